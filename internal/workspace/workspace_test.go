package workspace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boxannotator/internal/boxes"
	"github.com/example/boxannotator/internal/geom"
)

func TestSaveRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ws", "session.db")
	ws, err := Open(path)
	require.NoError(t, err)

	st := boxes.NewStore("a.png", "b.png")
	require.NoError(t, st.SetBoxes(1, []geom.Box{{Label: "cat", X: 1, Y: 2, Width: 3, Height: 4}}))
	require.NoError(t, ws.SaveAll(st))
	require.NoError(t, ws.Close())

	ws, err = Open(path)
	require.NoError(t, err)
	defer ws.Close()

	bases, err := ws.Bases()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, bases)

	fresh := boxes.NewStore("elsewhere/a.jpg", "elsewhere/b.jpg")
	n, err := ws.RestoreAll(fresh)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, fresh.BoxesAt(0))
	assert.Equal(t, "cat", fresh.BoxesAt(1)[0].Label)
}

func TestSaveEmptyRemoves(t *testing.T) {
	ws, err := Open(filepath.Join(t.TempDir(), "w.db"))
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.Save("x", []geom.Box{{Width: 1, Height: 1}}))
	require.NoError(t, ws.Save("x", nil))
	_, ok, err := ws.Restore("x")
	require.NoError(t, err)
	assert.False(t, ok)
}
