package asset

import (
	"archive/zip"
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDir(t *testing.T) *Dir {
	t.Helper()
	d, err := NewDir(fstest.MapFS{
		"materials/Brick/Wall01.vmt":   {Data: []byte("wall")},
		"materials/models/props/a.vmt": {Data: []byte("prop a")},
		"maps/ctf_test.bsp":            {Data: []byte("bsp")},
	})
	require.NoError(t, err)
	return d
}

func testPak(t *testing.T, files map[string]string) *Pak {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	p, err := OpenPak(buf.Bytes())
	require.NoError(t, err)
	return p
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "materials/brick/wall01.vmt", Normalize(`\Materials\Brick//Wall01.VMT`))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "materials/a.vmt", Join("", "materials/a.vmt"))
	assert.Equal(t, "materials/models/props/a.vmt", Join("materials/models/props/", "a.vmt"))
}

func TestDirCaseInsensitive(t *testing.T) {
	d := testDir(t)
	assert.Equal(t, 3, d.Len())

	data, err := d.Fetch("MATERIALS\\brick\\wall01.vmt")
	require.NoError(t, err)
	assert.Equal(t, "wall", string(data))

	_, err = d.Fetch("materials/missing.vmt")
	assert.True(t, IsNotFound(err))
}

func TestPak(t *testing.T) {
	p := testPak(t, map[string]string{"materials/Custom/Sign.vmt": "sign"})
	assert.Equal(t, 1, p.Len())

	data, err := p.Fetch("materials/custom/sign.vmt")
	require.NoError(t, err)
	assert.Equal(t, "sign", string(data))

	_, err = p.Fetch("materials/custom/other.vmt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenPakRejectsGarbage(t *testing.T) {
	_, err := OpenPak([]byte("definitely not a zip"))
	assert.Error(t, err)
}

func TestChainFirstHitWins(t *testing.T) {
	pak := testPak(t, map[string]string{"materials/brick/wall01.vmt": "override"})
	c := Chain{pak, nil, testDir(t)}

	data, err := c.Fetch("materials/brick/wall01.vmt")
	require.NoError(t, err)
	assert.Equal(t, "override", string(data))

	data, err = c.Fetch("maps/ctf_test.bsp")
	require.NoError(t, err)
	assert.Equal(t, "bsp", string(data))

	_, err = c.Fetch("nothing/here")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindFirst(t *testing.T) {
	d := testDir(t)

	name, err := FindFirst(d, "a.vmt", []string{"materials/models/other", "materials/models/props"})
	require.NoError(t, err)
	assert.Equal(t, "materials/models/props/a.vmt", name)

	_, err = FindFirst(d, "a.vmt", []string{"materials/nowhere"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = FindFirst(d, "a.vmt", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
