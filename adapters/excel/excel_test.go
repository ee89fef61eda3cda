package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"craftcheck/domain/crafting"
)

func TestMaterialsXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.xlsx")
	in := []crafting.MaterialInfo{
		{ID: "iron_ingot", Name: "Iron Ingot", Category: crafting.CategoryMetal, Tier: 2, Rarity: crafting.RarityCommon},
		{ID: "fire_crystal", Category: crafting.CategoryElemental, Tier: 3, Rarity: crafting.RarityRare, Element: crafting.ElementFire},
	}
	require.NoError(t, WriteMaterials(path, in))

	got, err := NewMaterialReader(path).ReadMaterials()
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestReadMaterialsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"ID,Category,Tier,Rarity\n"+
			"oak_plank,wood,1,common\n"+
			",metal,2,common\n"+
			"granite,STONE,,\n"+
			"star_gem,gem,7,legendary\n"), 0o644))

	got, err := NewMaterialReader(path).ReadMaterials()
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "oak_plank", got[0].ID)
	assert.Equal(t, crafting.CategoryStone, got[1].Category)
	assert.Equal(t, 1, got[1].Tier)
	assert.Equal(t, crafting.RarityCommon, got[1].Rarity)
	assert.Equal(t, 4, got[2].Tier)
}

func TestReadMaterialsErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := NewMaterialReader(filepath.Join(dir, "missing.xlsx")).ReadMaterials()
	assert.Error(t, err)

	noCategory := filepath.Join(dir, "nocat.csv")
	require.NoError(t, os.WriteFile(noCategory, []byte("id,tier\nx,1\n"), 0o644))
	_, err = NewMaterialReader(noCategory).ReadMaterials()
	assert.Error(t, err)

	badTier := filepath.Join(dir, "badtier.csv")
	require.NoError(t, os.WriteFile(badTier, []byte("id,category,tier\nx,metal,high\n"), 0o644))
	_, err = NewMaterialReader(badTier).ReadMaterials()
	assert.ErrorContains(t, err, "invalid tier")
}

func TestTensorWriterSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.xlsx")
	w := NewTensorWriter()
	require.NoError(t, w.WriteTensor(crafting.DisciplineAlchemy, []string{"index", "value"}, [][]interface{}{{0, 0.5}, {1, 0.25}}))
	require.NoError(t, w.WriteTensor(crafting.DisciplineRefining, []string{"index", "value"}, [][]interface{}{{0, 1.0}}))
	require.NoError(t, w.SaveAs(path))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"alchemy", "refining"}, f.GetSheetList())

	rows, err := f.GetRows("alchemy")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"index", "value"}, {"0", "0.5"}, {"1", "0.25"}}, rows)
}

func TestIsSheetFile(t *testing.T) {
	assert.True(t, IsSheetFile("a.XLSX"))
	assert.True(t, IsSheetFile("a.csv"))
	assert.False(t, IsSheetFile("a.yaml"))
}
