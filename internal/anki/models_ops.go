package anki

import (
	"context"

	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/logger"
	"github.com/vytor/ankistore/internal/models"
)

// AddModel builds a model from the given fields and templates, inserts it
// into the metadata mapping and returns its id.
func (c *Collection) AddModel(ctx context.Context, name string, fields []*models.Field, templates []*models.Template, overrides map[string]any) (int64, error) {
	log := logger.FromContext(ctx)

	col, err := c.col.Get(ctx)
	if err != nil {
		return 0, err
	}

	model, err := models.NewModel(c.gen, name, fields, templates, overrides)
	if err != nil {
		return 0, err
	}

	updated := copyModels(col.Models)
	updated[models.IDKey(model.ID)] = model
	col.Models = updated
	if err := c.col.Save(ctx, col); err != nil {
		return 0, err
	}

	log.Debug("model added: id=%d name=%q templates=%d", model.ID, name, len(templates))
	return model.ID, nil
}

// ModelByID resolves a model from the metadata mapping.
func (c *Collection) ModelByID(ctx context.Context, modelID int64) (*models.Model, error) {
	col, err := c.col.Get(ctx)
	if err != nil {
		return nil, err
	}
	return col.ModelByID(modelID)
}

// ModelFieldNamesByID returns a model's field names in ordinal order.
func (c *Collection) ModelFieldNamesByID(ctx context.Context, modelID int64) ([]string, error) {
	model, err := c.ModelByID(ctx, modelID)
	if err != nil {
		return nil, err
	}
	return model.FieldNames(), nil
}

// ModelTemplateNamesByID returns a model's template names in ordinal order.
func (c *Collection) ModelTemplateNamesByID(ctx context.Context, modelID int64) ([]string, error) {
	model, err := c.ModelByID(ctx, modelID)
	if err != nil {
		return nil, err
	}
	return model.TemplateNames(), nil
}

// ModelNames returns every model name, unordered.
func (c *Collection) ModelNames(ctx context.Context) ([]string, error) {
	col, err := c.col.Get(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(col.Models))
	for _, m := range col.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// ModelNamesAndIDs maps model names to ids.
func (c *Collection) ModelNamesAndIDs(ctx context.Context) (map[string]int64, error) {
	col, err := c.col.Get(ctx)
	if err != nil {
		return nil, err
	}
	return col.ModelNamesAndIDs(), nil
}

// ModelFieldNames resolves a model by name and returns its field names.
func (c *Collection) ModelFieldNames(ctx context.Context, modelName string) ([]string, error) {
	id, err := c.modelIDByName(ctx, modelName)
	if err != nil {
		return nil, err
	}
	return c.ModelFieldNamesByID(ctx, id)
}

// ModelTemplateNames resolves a model by name and returns its template names.
func (c *Collection) ModelTemplateNames(ctx context.Context, modelName string) ([]string, error) {
	id, err := c.modelIDByName(ctx, modelName)
	if err != nil {
		return nil, err
	}
	return c.ModelTemplateNamesByID(ctx, id)
}

func (c *Collection) modelIDByName(ctx context.Context, modelName string) (int64, error) {
	ids, err := c.ModelNamesAndIDs(ctx)
	if err != nil {
		return 0, err
	}
	id, ok := ids[modelName]
	if !ok {
		return 0, errors.NewNotFoundError("model", modelName)
	}
	return id, nil
}

func copyModels(src map[string]*models.Model) map[string]*models.Model {
	out := make(map[string]*models.Model, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	return out
}
