package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/model"
)

// recordingDelegate records every callback it receives.
type recordingDelegate struct {
	calls   []string
	canMove bool
}

func (d *recordingDelegate) WillDisplayRow(path diffkit.RowPath, row model.Row) {
	d.calls = append(d.calls, "willDisplay")
}

func (d *recordingDelegate) DidEndDisplayingRow(path diffkit.RowPath, row model.Row) {
	d.calls = append(d.calls, "didEndDisplaying")
}

func (d *recordingDelegate) DidSelectRow(path diffkit.RowPath, row model.Row) {
	d.calls = append(d.calls, "didSelect")
}

func (d *recordingDelegate) DidDeselectRow(path diffkit.RowPath, row model.Row) {
	d.calls = append(d.calls, "didDeselect")
}

func (d *recordingDelegate) CanMoveRow(path diffkit.RowPath) bool {
	d.calls = append(d.calls, "canMove")
	return d.canMove
}

func (d *recordingDelegate) MoveRow(from, to diffkit.RowPath) {
	d.calls = append(d.calls, "move")
}

func TestProxy_ForwardsToFallback(t *testing.T) {
	fallback := &recordingDelegate{canMove: true}
	p := NewProxy(fallback)
	path := diffkit.RowPath{Section: 0, Row: 1}
	row := model.TextRow("x")

	p.WillDisplayRow(path, row)
	p.DidEndDisplayingRow(path, row)
	p.DidSelectRow(path, row)
	p.DidDeselectRow(path, row)
	assert.True(t, p.CanMoveRow(path))
	p.MoveRow(path, diffkit.RowPath{Section: 0, Row: 0})

	assert.Equal(t, []string{
		"willDisplay", "didEndDisplaying", "didSelect",
		"didDeselect", "canMove", "move",
	}, fallback.calls)
}

func TestProxy_NilFallback(t *testing.T) {
	p := NewProxy(nil)
	path := diffkit.RowPath{Section: 0, Row: 0}
	row := model.TextRow("x")

	assert.NotPanics(t, func() {
		p.WillDisplayRow(path, row)
		p.DidSelectRow(path, row)
		p.MoveRow(path, path)
	})
	assert.False(t, p.CanMoveRow(path),
		"a widget without a delegate must stay immutable")
}

func TestIntercept_OverridesOnlySetHooks(t *testing.T) {
	fallback := &recordingDelegate{}
	var intercepted []diffkit.RowPath

	d := Intercept(NewProxy(fallback), Hooks{
		DidSelectRow: func(path diffkit.RowPath, row model.Row) {
			intercepted = append(intercepted, path)
		},
		CanMoveRow: func(path diffkit.RowPath) bool {
			return true
		},
	})

	path := diffkit.RowPath{Section: 1, Row: 2}
	row := model.TextRow("x")

	d.DidSelectRow(path, row)
	d.WillDisplayRow(path, row)
	assert.True(t, d.CanMoveRow(path))

	assert.Equal(t, []diffkit.RowPath{path}, intercepted)
	assert.Equal(t, []string{"willDisplay"}, fallback.calls,
		"intercepted callbacks must not reach the fallback")
}

func TestIntercept_Stacks(t *testing.T) {
	fallback := &recordingDelegate{}
	var order []string

	inner := Intercept(NewProxy(fallback), Hooks{
		DidSelectRow: func(path diffkit.RowPath, row model.Row) {
			order = append(order, "inner")
		},
	})
	outer := Intercept(inner, Hooks{
		WillDisplayRow: func(path diffkit.RowPath, row model.Row) {
			order = append(order, "outer")
		},
	})

	path := diffkit.RowPath{}
	row := model.TextRow("x")

	outer.WillDisplayRow(path, row)
	outer.DidSelectRow(path, row)
	outer.MoveRow(path, path)

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, []string{"move"}, fallback.calls,
		"unhooked callbacks fall through the whole chain")
}
