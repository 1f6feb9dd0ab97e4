package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/idgen"
	"github.com/vytor/ankistore/internal/models"
)

func newTestModel(t *testing.T) *models.Model {
	t.Helper()
	model, err := models.NewModel(
		idgen.NewSequence(5000),
		"Basic",
		models.FieldsFromNames("Front", "Back"),
		models.TemplatesFromSpecs([]models.TemplateSpec{
			{Name: "Card 1", Question: "{{Front}}", Answer: "{{Back}}"},
			{Name: "Card 2", Question: "{{Back}}", Answer: "{{Front}}"},
		}),
		nil,
	)
	require.NoError(t, err)
	return model
}

func TestNewModel(t *testing.T) {
	model := newTestModel(t)

	assert.Equal(t, int64(5000), model.ID)
	assert.Equal(t, "Basic", model.Name)
	assert.Equal(t, []string{"Front", "Back"}, model.FieldNames())
	assert.Equal(t, []string{"Card 1", "Card 2"}, model.TemplateNames())
	assert.NotEmpty(t, model.CSS, "schema defaults carry over")

	require.Len(t, model.Req, 2)
	assert.Equal(t, 0, model.Req[0].TemplateOrd)
	assert.Equal(t, "all", model.Req[0].Kind)

	for i, f := range model.Fields {
		assert.Equal(t, i, f.Ord, "field ordinals are dense")
	}
	for i, tmpl := range model.Templates {
		assert.Equal(t, i, tmpl.Ord, "template ordinals are dense")
	}
}

func TestNewModelOverrides(t *testing.T) {
	model, err := models.NewModel(
		idgen.NewSequence(1),
		"Styled",
		models.FieldsFromNames("Front"),
		models.TemplatesFromSpecs([]models.TemplateSpec{{Name: "Card 1", Question: "{{Front}}", Answer: "{{Front}}"}}),
		map[string]any{"css": ".card { color: red; }"},
	)
	require.NoError(t, err)
	assert.Equal(t, ".card { color: red; }", model.CSS)
}

func TestTemplateOrdByName(t *testing.T) {
	model := newTestModel(t)

	ord, err := model.TemplateOrdByName("Card 2")
	require.NoError(t, err)
	assert.Equal(t, 1, ord)

	_, err = model.TemplateOrdByName("Card 9")
	assert.True(t, errors.IsNotFound(err))
}

func TestRequirementJSON(t *testing.T) {
	req := models.Requirement{TemplateOrd: 2, Kind: "any", FieldOrds: []int{0, 3}}

	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `[2, "any", [0, 3]]`, string(b), "requirements persist as triple arrays")

	var back models.Requirement
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, req, back)
}

func TestNewDeck(t *testing.T) {
	deck, err := models.NewDeck(idgen.NewSequence(9000), "Japanese::Verbs", "conjugation drills", 1, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(9000), deck.ID)
	assert.Equal(t, "Japanese::Verbs", deck.Name)
	assert.Equal(t, "conjugation drills", deck.Desc)
	assert.Equal(t, int64(1), deck.Conf)
	assert.Equal(t, 10, deck.ExtendNew)
	assert.Equal(t, 50, deck.ExtendRev)
}

func TestNewDeckConfig(t *testing.T) {
	dc, err := models.NewDeckConfig(idgen.NewSequence(7000), "Aggressive", map[string]any{
		"rev": map[string]any{"ease4": 1.5},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7000), dc.ID)
	assert.Equal(t, "Aggressive", dc.Name)
	assert.Equal(t, 1.5, dc.Rev.Ease4)
	assert.Equal(t, 2500, dc.New.InitialFactor, "untouched defaults survive the override merge")
}

func TestNewDeckConfigPinnedID(t *testing.T) {
	dc, err := models.NewDeckConfig(idgen.NewSequence(7000), "Default", map[string]any{"id": int64(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), dc.ID)
}

func TestNewCard(t *testing.T) {
	card := models.NewCard(42, 7, 1)

	assert.Equal(t, int64(42), card.NoteID)
	assert.Equal(t, int64(7), card.DeckID)
	assert.Equal(t, 1, card.Ord)
	assert.Equal(t, models.CardTypeNew, card.Type)
	assert.Equal(t, models.QueueNew, card.Queue)
	assert.Equal(t, int64(42), card.Due, "new cards are keyed by their note id")
	assert.Equal(t, -1, card.USN)
}

func TestNewCardForTemplate(t *testing.T) {
	model := newTestModel(t)

	card, err := models.NewCardForTemplate(42, 7, model, "Card 2")
	require.NoError(t, err)
	assert.Equal(t, 1, card.Ord)

	_, err = models.NewCardForTemplate(42, 7, model, "Missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestColLookups(t *testing.T) {
	model := newTestModel(t)
	deck, err := models.NewDeck(idgen.NewSequence(9000), "Default", "", 1, nil)
	require.NoError(t, err)

	col := &models.Col{
		Models: map[string]*models.Model{models.IDKey(model.ID): model},
		Decks:  map[string]*models.Deck{models.IDKey(deck.ID): deck},
	}

	got, err := col.ModelByID(model.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Name, got.Name)

	_, err = col.ModelByID(1)
	assert.True(t, errors.IsNotFound(err))

	assert.Equal(t, []string{"Default"}, col.DeckNames())
	assert.Equal(t, map[string]int64{"Default": deck.ID}, col.DeckNamesAndIDs())
	assert.Equal(t, map[string]int64{"Basic": model.ID}, col.ModelNamesAndIDs())
}
