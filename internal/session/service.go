package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"humanizer/internal/cache"
	"humanizer/internal/events"
	"humanizer/internal/extract"
	"humanizer/internal/llm"
	"humanizer/internal/store"
	"humanizer/internal/textstats"
)

const lockStripes = 64

// Service runs the user actions against stored sessions.
type Service struct {
	sessions  Store
	history   store.Store
	extractor extract.Extractor
	llm       llm.Client
	events    events.Publisher
	cache     cache.Cache
	log       *slog.Logger

	cacheTTL      time.Duration
	maxTextLength int
	locks         [lockStripes]sync.Mutex
}

// Options bundles the collaborators of a Service.
type Options struct {
	Sessions      Store
	History       store.Store
	Extractor     extract.Extractor
	LLM           llm.Client
	Events        events.Publisher
	Cache         cache.Cache // extracted text by document content
	CacheTTL      time.Duration
	Log           *slog.Logger
	MaxTextLength int // 0 disables the limit
}

func NewService(opts Options) *Service {
	if opts.Events == nil {
		opts.Events = events.NewNoOp()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNoOpCache()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Service{
		sessions:      opts.Sessions,
		history:       opts.History,
		extractor:     opts.Extractor,
		llm:           opts.LLM,
		events:        opts.Events,
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
		log:           opts.Log,
		maxTextLength: opts.MaxTextLength,
	}
}

// lock serialises read-modify-write cycles on one session.
func (s *Service) lock(id uuid.UUID) func() {
	mu := &s.locks[int(id[0])%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// ExtractText reads doc and applies the minimum-length check. Only text that
// passes the check is cached.
func (s *Service) ExtractText(ctx context.Context, doc extract.Document) (string, error) {
	key := cache.Key(doc.MIMEType, doc.Content)
	if text, ok, err := s.cache.GetText(ctx, key); err != nil {
		s.log.Warn("extract cache lookup failed", "filename", doc.Name, "err", err)
	} else if ok {
		s.log.Debug("extract cache hit", "filename", doc.Name)
		return text, nil
	}

	text, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return "", err
	}
	if err := extract.CheckLength(text); err != nil {
		return "", err
	}
	if err := s.cache.SetText(ctx, key, text, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache extracted text", "filename", doc.Name, "err", err)
	}
	return text, nil
}

// Rewrite validates text and sends it to the model once.
func (s *Service) Rewrite(ctx context.Context, text string) (string, textstats.Stats, error) {
	if err := s.checkInput(text); err != nil {
		return "", textstats.Stats{}, err
	}
	out, err := s.llm.Humanize(ctx, text)
	if err != nil {
		return "", textstats.Stats{}, err
	}
	return out, textstats.Analyze(text, out), nil
}

func (s *Service) checkInput(text string) error {
	probe := Session{InputText: text}
	if !probe.HasInput() {
		return ErrEmptyInput
	}
	if s.maxTextLength > 0 && utf8.RuneCountInString(text) > s.maxTextLength {
		return fmt.Errorf("%w (max %d characters)", ErrTooLong, s.maxTextLength)
	}
	return nil
}

func (s *Service) Create(ctx context.Context) (Session, error) {
	sess := New()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	s.publish(ctx, events.TypeCreated, sess)
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	return s.sessions.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := s.lock(id)
	defer unlock()
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TypeDeleted, Session{ID: id})
	return nil
}

// update loads a session, applies fn and saves the result under the session lock.
func (s *Service) update(ctx context.Context, id uuid.UUID, fn func(*Session) error) (Session, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if err := fn(&sess); err != nil {
		return sess, err
	}
	sess.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func rejectBusy(sess *Session) error {
	if sess.Busy() {
		return ErrBusy
	}
	return nil
}

// LoadFile replaces the input text with the text of doc. On failure the
// returned session carries the user-facing message and the error is returned.
func (s *Service) LoadFile(ctx context.Context, id uuid.UUID, doc extract.Document) (Session, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		if err := rejectBusy(sess); err != nil {
			return err
		}
		sess.BeginFileRead(doc.Name)
		return nil
	})
	if err != nil {
		return sess, err
	}
	s.publish(ctx, events.TypeReadingFile, sess)

	text, extractErr := s.ExtractText(ctx, doc)
	// The session must leave reading_file even if the request went away.
	settleCtx := context.WithoutCancel(ctx)
	sess, err = s.update(settleCtx, id, func(sess *Session) error {
		if extractErr != nil {
			sess.FailFileRead(extract.UserMessage(extractErr))
			return nil
		}
		sess.FinishFileRead(text)
		return nil
	})
	if err != nil {
		return sess, err
	}
	s.publish(settleCtx, eventFor(sess.Status), sess)
	if extractErr != nil {
		s.log.Warn("file extraction failed", "session_id", id, "filename", doc.Name, "mime", doc.MIMEType, "err", extractErr)
		return sess, extractErr
	}
	return sess, nil
}

// SetText replaces the input text, as when the user types or pastes.
func (s *Service) SetText(ctx context.Context, id uuid.UUID, text string) (Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		if err := rejectBusy(sess); err != nil {
			return err
		}
		if s.maxTextLength > 0 && utf8.RuneCountInString(text) > s.maxTextLength {
			return fmt.Errorf("%w (max %d characters)", ErrTooLong, s.maxTextLength)
		}
		sess.SetText(text)
		return nil
	})
}

// Humanize rewrites the session's input text. Blank input is rejected without
// touching the session.
func (s *Service) Humanize(ctx context.Context, id uuid.UUID) (Session, error) {
	var input string
	sess, err := s.update(ctx, id, func(sess *Session) error {
		if err := s.checkInput(sess.InputText); err != nil {
			return err
		}
		if err := rejectBusy(sess); err != nil {
			return err
		}
		input = sess.InputText
		sess.BeginProcessing()
		return nil
	})
	if err != nil {
		return sess, err
	}
	s.publish(ctx, events.TypeProcessing, sess)

	out, rewriteErr := s.llm.Humanize(ctx, input)
	settleCtx := context.WithoutCancel(ctx)
	sess, err = s.update(settleCtx, id, func(sess *Session) error {
		if rewriteErr != nil {
			sess.Fail(llm.FailureMessage)
			return nil
		}
		sess.Complete(out)
		return nil
	})
	if err != nil {
		return sess, err
	}
	s.publish(settleCtx, eventFor(sess.Status), sess)
	if rewriteErr != nil {
		s.log.Error("rewrite failed", "session_id", id, "model", s.llm.Model(), "err", rewriteErr)
		return sess, rewriteErr
	}
	s.record(settleCtx, id, input, out)
	return sess, nil
}

// record stores a completed rewrite. Failures are logged only.
func (s *Service) record(ctx context.Context, id uuid.UUID, input, out string) {
	if s.history == nil {
		return
	}
	_, err := s.history.SaveRewrite(ctx, store.Rewrite{
		SessionID: id,
		Original:  input,
		Humanized: out,
		Model:     s.llm.Model(),
		Stats:     textstats.Analyze(input, out),
	})
	if err != nil {
		s.log.Warn("failed to record rewrite", "session_id", id, "err", err)
	}
}

func (s *Service) RemoveFile(ctx context.Context, id uuid.UUID) (Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		sess.RemoveFile()
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, id uuid.UUID) (Session, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		sess.Clear()
		return nil
	})
	if err != nil {
		return sess, err
	}
	s.publish(ctx, events.TypeCleared, sess)
	return sess, nil
}

// Rewrites lists the recorded rewrites of an existing session, newest first.
func (s *Service) Rewrites(ctx context.Context, id uuid.UUID) ([]store.Rewrite, error) {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []store.Rewrite{}, nil
	}
	return s.history.ListRewrites(ctx, id)
}

func eventFor(st Status) events.Type {
	switch st {
	case StatusReadingFile:
		return events.TypeReadingFile
	case StatusProcessing:
		return events.TypeProcessing
	case StatusCompleted:
		return events.TypeCompleted
	case StatusError:
		return events.TypeError
	default:
		return events.TypeIdle
	}
}

func (s *Service) publish(ctx context.Context, t events.Type, sess Session) {
	ev := events.Event{Type: t, SessionID: sess.ID, Status: string(sess.Status)}
	if err := events.PublishWithRetry(ctx, s.events, ev, 3, 50*time.Millisecond); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("failed to publish event", "type", t, "session_id", sess.ID, "err", err)
	}
}
