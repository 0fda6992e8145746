package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Skotchmaster/library/internal/events"
	"github.com/Skotchmaster/library/internal/models"
	"github.com/Skotchmaster/library/internal/repo"
	"github.com/Skotchmaster/library/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	err    error
	topics []string
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, topic, _ string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fakeIndexer struct {
	indexed []models.Book
	deleted []uint
	err     error
}

func (f *fakeIndexer) IndexBook(_ context.Context, b models.Book) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, b)
	return nil
}

func (f *fakeIndexer) DeleteBook(_ context.Context, id uint) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newRepo(t *testing.T) *repo.GormRepo {
	return &repo.GormRepo{DB: testutil.NewDB(t)}
}
