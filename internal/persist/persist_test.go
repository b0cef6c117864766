package persist

import (
	"archive/zip"
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boxannotator/internal/boxes"
	"github.com/example/boxannotator/internal/geom"
)

var sample = []geom.Box{
	{Label: "cat", X: 1, Y: 2, Width: 3, Height: 4},
	{Label: "dog", X: 10.5, Y: 0, Width: 0, Height: 7.25},
}

func TestBoxesRoundTrip(t *testing.T) {
	data, err := MarshalBoxes(sample)
	require.NoError(t, err)
	got, err := UnmarshalBoxes(data)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestWireShape(t *testing.T) {
	data, err := MarshalBoxes(sample[:1])
	require.NoError(t, err)
	assert.JSONEq(t, `[{"label":"cat","x":1,"y":2,"width":3,"height":4}]`, string(data))

	empty, err := MarshalBoxes(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestUnmarshalRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		`{}`,
		`null`,
		`[{"label":"a","x":1,"y":2,"width":3}]`,
		`[{"label":"a","x":1,"y":2,"width":3,"height":4,"extra":true}]`,
		`[{"label":1,"x":1,"y":2,"width":3,"height":4}]`,
		`[{"label":"a","x":"1","y":2,"width":3,"height":4}]`,
		`[] []`,
		`[null]`,
	} {
		got, err := UnmarshalBoxes([]byte(in))
		assert.ErrorIs(t, err, ErrMalformed, "input %s", in)
		assert.Nil(t, got, "input %s", in)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	s := boxes.NewStore("imgs/a.png", "imgs/b.jpg")
	require.NoError(t, s.SetBoxes(0, sample))

	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, Entries(s)))

	es, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, es, 2)
	assert.Equal(t, "a", es[0].Base)
	assert.Equal(t, sample, es[0].Boxes)
	assert.Equal(t, "b", es[1].Base)
	assert.Empty(t, es[1].Boxes)

	fresh := boxes.NewStore("other/b.jpg", "other/a.png")
	unmatched, err := Apply(fresh, es)
	require.NoError(t, err)
	assert.Empty(t, unmatched)
	assert.Equal(t, sample, fresh.BoxesAt(1))
}

func TestReadArchiveSkipsMalformedEntries(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	good, _ := zw.Create("good.json")
	_, _ = good.Write([]byte(`[{"label":"a","x":0,"y":0,"width":1,"height":1}]`))
	bad, _ := zw.Create("bad.json")
	_, _ = bad.Write([]byte(`[{"label":"a"}]`))
	other, _ := zw.Create("readme.txt")
	_, _ = other.Write([]byte("ignored"))
	require.NoError(t, zw.Close())

	es, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorIs(t, err, ErrMalformed)
	require.Len(t, es, 1)
	assert.Equal(t, "good", es[0].Base)

	s := boxes.NewStore("good.png", "bad.png")
	require.NoError(t, s.SetBoxes(1, sample))
	unmatched, err := Apply(s, es)
	require.NoError(t, err)
	assert.Empty(t, unmatched)
	assert.Equal(t, sample, s.BoxesAt(1), "malformed entry leaves existing boxes alone")
}

func TestApplyReportsUnmatched(t *testing.T) {
	s := boxes.NewStore("a.png")
	got, err := Apply(s, []Entry{{Base: "zzz", Boxes: sample}})
	require.NoError(t, err)
	assert.Equal(t, []string{"zzz"}, got)
	assert.Empty(t, s.BoxesAt(0))
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "cat.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"label":"x","x":1,"y":1,"width":2,"height":2}]`), 0o644))
	bad := filepath.Join(dir, "dog.json")
	require.NoError(t, os.WriteFile(bad, []byte(`not json`), 0o644))

	es, err := ReadFiles([]string{good, bad})
	assert.ErrorIs(t, err, ErrMalformed)
	require.Len(t, es, 1)
	assert.Equal(t, "cat", es[0].Base)
}

func TestArchiveName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 17, 4, 5, 123e6, time.FixedZone("x", 3600))
	assert.Equal(t, "2024-03-09T16:04:05.123Z.zip", ArchiveName(ts))
}

func TestExportFileAndBundleDir(t *testing.T) {
	dir := t.TempDir()
	s := boxes.NewStore("a.png")
	require.NoError(t, s.SetBoxes(0, sample))
	name, size, err := ExportFile(dir, s, time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1970-01-01T00:00:00.000Z.zip"), name)
	assert.Positive(t, size)

	es, err := OpenArchive(name)
	require.NoError(t, err)
	require.Len(t, es, 1)

	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.json"), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.json"), []byte(`[{"label":"q","x":0,"y":0,"width":1,"height":1}]`), 0o644))
	var buf bytes.Buffer
	n, err := BundleDir(&buf, src)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	bundled, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, bundled, 2)
	assert.Equal(t, "a", bundled[0].Base)
}

func TestExportFileRemovesFailedArchive(t *testing.T) {
	dir := t.TempDir()
	s := boxes.NewStore("a.png")
	require.NoError(t, s.SetBoxes(0, []geom.Box{{Label: "bad", X: math.NaN(), Width: 1, Height: 1}}))
	_, _, err := ExportFile(dir, s, time.Unix(0, 0))
	require.Error(t, err)

	left, err := filepath.Glob(filepath.Join(dir, "*.zip"))
	require.NoError(t, err)
	assert.Empty(t, left)
}
