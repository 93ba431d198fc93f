package service

import (
	"context"
	"sync"
	"testing"

	"lecturelab_backend/internal/config"
	"lecturelab_backend/internal/model"
	"lecturelab_backend/internal/repository"
	"lecturelab_backend/internal/testutil"

	"gorm.io/gorm"
)

type fakeLLM struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	lastUser string
	lastName string
}

func (f *fakeLLM) ChatJSON(ctx context.Context, system, user, schemaName string, schema map[string]interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastUser = user
	f.lastName = schemaName
	return f.response, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*ItemStats
}

func (p *recordingPublisher) PublishItemStats(lessonID string, stats *ItemStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, stats)
}

func (p *recordingPublisher) last() *ItemStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	return f.text, f.err
}

type fakeGenerator struct {
	lesson    *model.GeneratedLesson
	err       error
	gotCount  int
	gotPrompt string
}

func (f *fakeGenerator) GenerateLesson(ctx context.Context, text string, itemCount int) (*model.GeneratedLesson, error) {
	f.gotCount = itemCount
	f.gotPrompt = text
	return f.lesson, f.err
}

type fixture struct {
	db      *gorm.DB
	lessons *LessonService
	answers *AnswerService
	pub     *recordingPublisher
	storage *StorageService
	root    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	root := t.TempDir()
	storage := NewStorageService(&config.StorageConfig{Type: "local", LocalPath: root})
	lessonRepo := repository.NewLessonRepository(db)
	pub := &recordingPublisher{}
	return &fixture{
		db:      db,
		lessons: NewLessonService(lessonRepo, storage),
		answers: NewAnswerService(repository.NewAnswerRepository(db), lessonRepo, pub),
		pub:     pub,
		storage: storage,
		root:    root,
	}
}

func intPtr(i int) *int { return &i }
