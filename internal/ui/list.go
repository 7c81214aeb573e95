package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/catalogctl/internal/formatter"
	"github.com/desertthunder/catalogctl/internal/models"
)

var (
	_ list.Item = typeItem{}
	_ list.Item = entityItem{}
)

// typeItem wraps [models.EntityType] to implement [list.Item].
type typeItem struct {
	entityType models.EntityType
	count      int
	loaded     bool
}

func (i typeItem) FilterValue() string { return i.entityType.String() }
func (i typeItem) Title() string {
	return i.entityType.Title() + "s"
}
func (i typeItem) Description() string {
	if !i.loaded {
		return "not loaded"
	}
	return fmt.Sprintf("%d records", i.count)
}

// entityItem wraps a [models.Entity] to implement [list.Item]. Relations are shown as bounded tags.
type entityItem struct {
	entity models.Entity
	limit  int
}

func (i entityItem) FilterValue() string { return i.entity.DisplayName() }
func (i entityItem) Title() string {
	return fmt.Sprintf("%s  #%d", i.entity.DisplayName(), i.entity.EntityID())
}
func (i entityItem) Description() string {
	if s := formatter.Summary(i.entity, i.limit); s != "" {
		return s
	}
	return formatter.Placeholder
}

func entityItems(items []models.Entity, limit int) []list.Item {
	out := make([]list.Item, len(items))
	for i, e := range items {
		out[i] = entityItem{entity: e, limit: limit}
	}
	return out
}
