// Package core defines the syntax tree shared by the parser, the printer and
// the translation passes.
//
// The node set is closed: every node type reports one of the Kind constants,
// and Walk, Clone and the printer switch over all of them. Adding a node
// means adding a Kind and extending those switches.
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
package core
