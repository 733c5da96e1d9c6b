package parser

import (
	"fmt"

	"github.com/leapstack-labs/transql/pkg/core"
	"github.com/leapstack-labs/transql/pkg/token"
)

// Window specification parsing.
//
// Grammar:
//
//	window_spec → "(" [PARTITION BY expr_list] [ORDER BY order_list] [frame_spec] ")"
//	frame_spec  → (ROWS | RANGE) (frame_bound | BETWEEN frame_bound AND frame_bound)
//	frame_bound → UNBOUNDED PRECEDING | UNBOUNDED FOLLOWING | CURRENT ROW
//	            | expr PRECEDING | expr FOLLOWING

func (p *Parser) parseWindowSpec() *core.WindowSpec {
	if !p.expect(token.LPAREN) {
		return nil
	}

	spec := &core.WindowSpec{}
	if p.match(token.PARTITION) {
		if !p.expect(token.BY) {
			return nil
		}
		spec.PartitionBy = p.parseExpressionList()
	}
	if p.check(token.ORDER) {
		p.nextToken()
		if !p.expect(token.BY) {
			return nil
		}
		spec.OrderBy = p.parseOrderByList()
	}
	if p.token.Is("ROWS") || p.token.Is("RANGE") {
		spec.Frame = p.parseFrameSpec()
	}

	if p.failed() || !p.expect(token.RPAREN) {
		return nil
	}
	return spec
}

func (p *Parser) parseFrameSpec() *core.FrameSpec {
	frame := &core.FrameSpec{Type: "RANGE"}
	if p.token.Is("ROWS") {
		frame.Type = "ROWS"
	}
	p.nextToken()

	if p.match(token.BETWEEN) {
		frame.Start = p.parseFrameBound()
		if p.failed() || !p.expect(token.AND) {
			return nil
		}
		frame.End = p.parseFrameBound()
	} else {
		frame.Start = p.parseFrameBound()
	}
	if p.failed() {
		return nil
	}
	return frame
}

func (p *Parser) parseFrameBound() *core.FrameBound {
	switch {
	case p.matchWord("UNBOUNDED"):
		switch {
		case p.matchWord("PRECEDING"):
			return &core.FrameBound{Type: core.FrameUnboundedPreceding}
		case p.matchWord("FOLLOWING"):
			return &core.FrameBound{Type: core.FrameUnboundedFollowing}
		}
	case p.matchWord("CURRENT"):
		if p.expectWord("ROW") {
			return &core.FrameBound{Type: core.FrameCurrentRow}
		}
		return nil
	default:
		offset := p.parseExpressionWithPrecedence(precedenceAddition)
		if p.failed() {
			return nil
		}
		switch {
		case p.matchWord("PRECEDING"):
			return &core.FrameBound{Type: core.FrameExprPreceding, Offset: offset}
		case p.matchWord("FOLLOWING"):
			return &core.FrameBound{Type: core.FrameExprFollowing, Offset: offset}
		}
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "PRECEDING or FOLLOWING"))
	return nil
}
