package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/services"
	"github.com/desertthunder/catalogctl/internal/session"
	"github.com/desertthunder/catalogctl/internal/shared"
	"github.com/desertthunder/catalogctl/internal/store"
)

// State is the lifecycle of one submission: Idle → Submitting → {Success, Failed}.
type State int

const (
	Idle State = iota
	Submitting
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Kind is the write a [Mutation] performs.
type Kind int

const (
	Create Kind = iota
	Update
	Delete
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return ""
	}
}

func (k Kind) past() string {
	switch k {
	case Create:
		return "created"
	case Update:
		return "updated"
	default:
		return "deleted"
	}
}

// Mutation is one user-initiated write against a collection.
type Mutation struct {
	Type  models.EntityType
	Kind  Kind
	ID    int64  // target record, zero for Create
	Body  any    // payload from reconcile.Builder, nil for Delete
	Label string // display name used in confirmations
	Skip  bool   // set when the builder found nothing to submit
}

// Outcome is the terminal state of a submission.
type Outcome struct {
	State   State
	Record  json.RawMessage // record returned by the service on success
	Err     error
	Message string // text shown to the user
}

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Confirmer asks the user to approve a destructive mutation.
type Confirmer interface {
	Confirm(ctx context.Context, m Mutation) (bool, error)
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(ctx context.Context, m Mutation) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, m Mutation) (bool, error) { return f(ctx, m) }

// Notifier surfaces outcome messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifyFunc adapts a function to [Notifier].
type NotifyFunc func(level Level, message string)

func (f NotifyFunc) Notify(level Level, message string) { f(level, message) }

// Coordinator runs mutations against the catalog service and keeps the store and session consistent afterwards.
//
// A successful write invalidates and reloads the owning collection. A failed write is classified and reported, never
// retried, and leaves the store untouched.
type Coordinator struct {
	client  services.Catalog
	store   *store.Store
	session *session.Context
	confirm Confirmer
	notify  Notifier
	logger  *log.Logger
}

// Option configures a [Coordinator].
type Option func(*Coordinator)

// WithConfirmer sets the delete confirmation. Without one every delete is declined.
func WithConfirmer(c Confirmer) Option {
	return func(co *Coordinator) { co.confirm = c }
}

// WithNotifier sets where outcome messages go.
func WithNotifier(n Notifier) Option {
	return func(co *Coordinator) { co.notify = n }
}

// WithLogger sets the logger for submissions and reload warnings.
func WithLogger(l *log.Logger) Option {
	return func(co *Coordinator) { co.logger = l }
}

// NewCoordinator creates a coordinator writing through client and reloading into st. sess may be nil.
func NewCoordinator(client services.Catalog, st *store.Store, sess *session.Context, opts ...Option) *Coordinator {
	c := &Coordinator{
		client:  client,
		store:   st,
		session: sess,
		confirm: ConfirmFunc(func(context.Context, Mutation) (bool, error) { return false, nil }),
		notify:  NotifyFunc(func(Level, string) {}),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sendProgress sends a progress update through the channel without blocking.
func (c *Coordinator) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Submit performs a create or update. Delete mutations are routed to [Coordinator.Delete].
func (c *Coordinator) Submit(ctx context.Context, m Mutation, progress chan<- ProgressUpdate) Outcome {
	if m.Kind == Delete {
		return c.Delete(ctx, m, progress)
	}
	if m.Skip {
		o := Outcome{State: Idle, Message: "No changes detected"}
		c.notify.Notify(LevelInfo, o.Message)
		c.sendProgress(progress, outcomeUpdate(o))
		return o
	}
	if c.client == nil {
		return c.fail(m, fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable), progress)
	}

	c.sendProgress(progress, submittingUpdate(m))
	c.logger.Debug("submitting mutation", "kind", m.Kind, "type", m.Type, "id", m.ID)

	var (
		record json.RawMessage
		err    error
	)
	switch m.Kind {
	case Create:
		record, err = c.client.Create(ctx, m.Type, m.Body)
	default:
		record, err = c.client.Update(ctx, m.Type, m.ID, m.Body)
	}
	if err != nil {
		return c.fail(m, err, progress)
	}

	c.reload(ctx, m.Type, progress)

	o := Outcome{
		State:   Success,
		Record:  record,
		Message: fmt.Sprintf("%s %s successfully", m.Type.Title(), m.Kind.past()),
	}
	if m.Kind == Update && m.Type == models.Users && c.session != nil && c.session.IsSelf(m.ID) {
		if c.propagate(m, record, progress) {
			o.Message = "Profile updated successfully!"
		}
	}

	c.notify.Notify(LevelSuccess, o.Message)
	c.sendProgress(progress, outcomeUpdate(o))
	c.logger.Info(o.Message, "type", m.Type, "id", m.ID)
	return o
}

// Delete asks the [Confirmer] first. Declining returns Idle without any request.
func (c *Coordinator) Delete(ctx context.Context, m Mutation, progress chan<- ProgressUpdate) Outcome {
	m.Kind = Delete
	c.sendProgress(progress, confirmUpdate(m))

	ok, err := c.confirm.Confirm(ctx, m)
	if err != nil {
		c.logger.Warn("confirmation failed", "err", err)
		return Outcome{State: Idle, Err: err}
	}
	if !ok {
		c.logger.Debug("delete declined", "type", m.Type, "id", m.ID)
		return Outcome{State: Idle}
	}
	if c.client == nil {
		return c.fail(m, fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable), progress)
	}

	c.sendProgress(progress, submittingUpdate(m))
	if err := c.client.Delete(ctx, m.Type, m.ID); err != nil {
		return c.fail(m, err, progress)
	}

	c.reload(ctx, m.Type, progress)

	o := Outcome{State: Success, Message: fmt.Sprintf("%s deleted successfully", m.Type.Title())}
	c.notify.Notify(LevelSuccess, o.Message)
	c.sendProgress(progress, outcomeUpdate(o))
	c.logger.Info(o.Message, "type", m.Type, "id", m.ID)
	return o
}

func (c *Coordinator) fail(m Mutation, err error, progress chan<- ProgressUpdate) Outcome {
	fallback := fmt.Sprintf("Failed to %s %s", m.Kind, m.Type.Singular())
	o := Outcome{State: Failed, Err: err, Message: services.Describe(err, fallback)}

	c.logger.Error("mutation failed", "kind", m.Kind, "type", m.Type, "id", m.ID, "err", err)
	c.notify.Notify(LevelError, o.Message)
	c.sendProgress(progress, outcomeUpdate(o))
	return o
}

// reload refreshes the owning collection. A filtered view, such as one author's playlists, stays filtered.
// Reload failures are warnings: the write already happened.
func (c *Coordinator) reload(ctx context.Context, t models.EntityType, progress chan<- ProgressUpdate) {
	if c.store == nil {
		return
	}
	c.sendProgress(progress, reloadingUpdate(t))
	c.store.Invalidate(t)

	if _, err := c.store.LoadFiltered(ctx, t, c.store.Filter(t)); err != nil {
		c.logger.Warn("reload after mutation failed", "type", t, "err", err)
	}
}

// propagate copies the updated profile into the session. Fields the response leaves out keep their session values.
func (c *Coordinator) propagate(m Mutation, record json.RawMessage, progress chan<- ProgressUpdate) bool {
	current, ok := c.session.Current()
	if !ok {
		return false
	}

	u := models.User{ID: current.ID, Name: current.Name, Email: current.Email}
	if len(record) > 0 {
		e, err := models.DecodeEntity(models.Users, record)
		if err != nil {
			c.logger.Warn("could not decode updated user", "err", err)
		} else if decoded, ok := e.(models.User); ok {
			if decoded.Name != "" {
				u.Name = decoded.Name
			}
			if decoded.Email != "" {
				u.Email = decoded.Email
			}
		}
	}

	c.sendProgress(progress, propagatingUpdate(u))
	if err := c.session.Update(u); err != nil {
		c.logger.Warn("session update failed", "err", err)
		return false
	}
	return true
}
