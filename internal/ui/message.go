package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCatalogLoaded MsgKind = iota
	MsgEntitiesLoaded
	MsgProgressUpdate
	MsgMutationComplete
)

type entitiesLoaded struct {
	entityType models.EntityType
	items      []models.Entity
	err        error
}

// catalogLoadedMsg is the constructor for [MsgCatalogLoaded]
func catalogLoadedMsg(err error) Msg {
	return Msg{kind: MsgCatalogLoaded, data: err}
}

// entitiesLoadedMsg is the constructor for [MsgEntitiesLoaded]
func entitiesLoadedMsg(t models.EntityType, items []models.Entity, err error) Msg {
	return Msg{kind: MsgEntitiesLoaded, data: entitiesLoaded{t, items, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// mutationCompleteMsg is the constructor for [MsgMutationComplete]
func mutationCompleteMsg(o tasks.Outcome) Msg {
	return Msg{kind: MsgMutationComplete, data: o}
}
