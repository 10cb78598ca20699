package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/rbaudit/internal/domain"
	"github.com/vbonduro/rbaudit/internal/persist"
)

type recordingSaver struct {
	keys   []string
	values []any
}

func (r *recordingSaver) Save(key string, v any) {
	r.keys = append(r.keys, key)
	r.values = append(r.values, v)
}

var sampleBuildings = []domain.Building{
	{ID: "B1", Name: "Coogee Hall", Address: "Coogee"},
	{ID: "B2", Name: "Success Pavilion", Address: "Success", Notes: "Key at front desk"},
}

func TestEmptyRegistry(t *testing.T) {
	r := New(&recordingSaver{})

	assert.Empty(t, r.List())
	_, ok := r.Current()
	assert.False(t, ok)
	assert.Equal(t, "", r.CurrentID())
}

func TestReplacePersists(t *testing.T) {
	saver := &recordingSaver{}
	r := New(saver)

	r.Replace(sampleBuildings)

	assert.Equal(t, sampleBuildings, r.List())
	require.Equal(t, []string{persist.KeyBuildings}, saver.keys)
	assert.Equal(t, sampleBuildings, saver.values[0])
}

func TestSelect(t *testing.T) {
	r := New(&recordingSaver{})
	r.Replace(sampleBuildings)

	r.Select("B2")
	b, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, "Success Pavilion", b.Name)
}

func TestSelectUnknownYieldsNoCurrent(t *testing.T) {
	r := New(&recordingSaver{})
	r.Replace(sampleBuildings)

	r.Select("nope")

	assert.Equal(t, "nope", r.CurrentID())
	_, ok := r.Current()
	assert.False(t, ok)
}

func TestSelectionIsNotPersisted(t *testing.T) {
	saver := &recordingSaver{}
	r := New(saver)

	r.Select("B1")

	assert.Empty(t, saver.keys)
}

func TestGet(t *testing.T) {
	r := New(&recordingSaver{})
	r.Replace(sampleBuildings)

	b, ok := r.Get("B1")
	require.True(t, ok)
	assert.Equal(t, "Coogee", b.Address)

	_, ok = r.Get("B9")
	assert.False(t, ok)
}

func TestListReturnsCopy(t *testing.T) {
	r := New(&recordingSaver{})
	r.Replace(sampleBuildings)

	list := r.List()
	list[0].Name = "Renamed"

	b, _ := r.Get("B1")
	assert.Equal(t, "Coogee Hall", b.Name)
}

func TestRestoreDoesNotSave(t *testing.T) {
	saver := &recordingSaver{}
	r := New(saver)

	r.Restore(sampleBuildings)

	assert.Len(t, r.List(), 2)
	assert.Empty(t, saver.keys)
}
