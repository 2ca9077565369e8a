package proxy

import (
	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/model"
)

// Delegate is the behavioral callback surface of a list-style widget.
//
// The sync layer only consumes MoveRow (to adopt a direct reorder
// gesture without re-animating it); everything else passes through so a
// host application keeps its existing delegate untouched.
type Delegate interface {
	// WillDisplayRow fires just before a row becomes visible.
	WillDisplayRow(path diffkit.RowPath, row model.Row)

	// DidEndDisplayingRow fires after a row leaves the visible region.
	DidEndDisplayingRow(path diffkit.RowPath, row model.Row)

	// DidSelectRow fires when the user selects a row.
	DidSelectRow(path diffkit.RowPath, row model.Row)

	// DidDeselectRow fires when a previous selection is cleared.
	DidDeselectRow(path diffkit.RowPath, row model.Row)

	// CanMoveRow reports whether the row at path accepts reorder
	// gestures.
	CanMoveRow(path diffkit.RowPath) bool

	// MoveRow commits a completed reorder gesture.
	MoveRow(from, to diffkit.RowPath)
}

// Proxy implements Delegate and forwards every callback to a fallback
// implementor. A nil fallback swallows callbacks; CanMoveRow then
// reports false so widgets without a delegate stay immutable.
//
// Proxy is the root of a decoration chain: wrap it with Intercept to
// override individual callbacks.
type Proxy struct {
	fallback Delegate
}

// NewProxy creates a proxy forwarding to fallback. fallback may be nil.
func NewProxy(fallback Delegate) *Proxy {
	return &Proxy{fallback: fallback}
}

func (p *Proxy) WillDisplayRow(path diffkit.RowPath, row model.Row) {
	if p.fallback != nil {
		p.fallback.WillDisplayRow(path, row)
	}
}

func (p *Proxy) DidEndDisplayingRow(path diffkit.RowPath, row model.Row) {
	if p.fallback != nil {
		p.fallback.DidEndDisplayingRow(path, row)
	}
}

func (p *Proxy) DidSelectRow(path diffkit.RowPath, row model.Row) {
	if p.fallback != nil {
		p.fallback.DidSelectRow(path, row)
	}
}

func (p *Proxy) DidDeselectRow(path diffkit.RowPath, row model.Row) {
	if p.fallback != nil {
		p.fallback.DidDeselectRow(path, row)
	}
}

func (p *Proxy) CanMoveRow(path diffkit.RowPath) bool {
	if p.fallback == nil {
		return false
	}
	return p.fallback.CanMoveRow(path)
}

func (p *Proxy) MoveRow(from, to diffkit.RowPath) {
	if p.fallback != nil {
		p.fallback.MoveRow(from, to)
	}
}

// Hooks selects individual delegate callbacks to override. An unset
// hook falls through to the wrapped delegate. A hook that also wants
// the wrapped behavior captures the inner delegate and calls it itself.
type Hooks struct {
	WillDisplayRow      func(path diffkit.RowPath, row model.Row)
	DidEndDisplayingRow func(path diffkit.RowPath, row model.Row)
	DidSelectRow        func(path diffkit.RowPath, row model.Row)
	DidDeselectRow      func(path diffkit.RowPath, row model.Row)
	CanMoveRow          func(path diffkit.RowPath) bool
	MoveRow             func(from, to diffkit.RowPath)
}

// Intercept wraps next with the given hooks. The result is itself a
// Delegate, so interceptors stack.
func Intercept(next Delegate, hooks Hooks) Delegate {
	return &interceptor{next: next, hooks: hooks}
}

type interceptor struct {
	next  Delegate
	hooks Hooks
}

func (i *interceptor) WillDisplayRow(path diffkit.RowPath, row model.Row) {
	if i.hooks.WillDisplayRow != nil {
		i.hooks.WillDisplayRow(path, row)
		return
	}
	i.next.WillDisplayRow(path, row)
}

func (i *interceptor) DidEndDisplayingRow(path diffkit.RowPath, row model.Row) {
	if i.hooks.DidEndDisplayingRow != nil {
		i.hooks.DidEndDisplayingRow(path, row)
		return
	}
	i.next.DidEndDisplayingRow(path, row)
}

func (i *interceptor) DidSelectRow(path diffkit.RowPath, row model.Row) {
	if i.hooks.DidSelectRow != nil {
		i.hooks.DidSelectRow(path, row)
		return
	}
	i.next.DidSelectRow(path, row)
}

func (i *interceptor) DidDeselectRow(path diffkit.RowPath, row model.Row) {
	if i.hooks.DidDeselectRow != nil {
		i.hooks.DidDeselectRow(path, row)
		return
	}
	i.next.DidDeselectRow(path, row)
}

func (i *interceptor) CanMoveRow(path diffkit.RowPath) bool {
	if i.hooks.CanMoveRow != nil {
		return i.hooks.CanMoveRow(path)
	}
	return i.next.CanMoveRow(path)
}

func (i *interceptor) MoveRow(from, to diffkit.RowPath) {
	if i.hooks.MoveRow != nil {
		i.hooks.MoveRow(from, to)
		return
	}
	i.next.MoveRow(from, to)
}
