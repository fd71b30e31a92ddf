// Integration tests against a real SurrealDB container.
package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/mailbrief/internal/models"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

const testUser = "user-1"

// newThread creates a thread with a fresh id for test setup.
func newThread(t *testing.T, ctx context.Context) *models.Thread {
	t.Helper()
	th, err := testDB.QueryCreateThread(ctx, uuid.NewString(), testUser, "Budget review", "From: alice@example.com\nWe need the Q3 numbers by Friday.")
	if err != nil {
		t.Fatalf("QueryCreateThread failed: %v", err)
	}
	return th
}

// newAnalysis creates an analysis for the given thread.
func newAnalysis(t *testing.T, ctx context.Context, threadID string) *models.Analysis {
	t.Helper()
	a, err := testDB.QueryCreateAnalysis(ctx, uuid.NewString(), threadID, testUser, models.Extraction{
		ActionItems: []models.ActionItem{{Description: "Send Q3 numbers", Assignee: "Alice", Priority: models.PriorityHigh, Evidence: "We need the Q3 numbers"}},
		Deadlines:   []models.Deadline{{Date: "Friday", Description: "Q3 numbers due", Evidence: "by Friday"}},
	}, "Will do.")
	if err != nil {
		t.Fatalf("QueryCreateAnalysis failed: %v", err)
	}
	return a
}

func TestThreadLifecycle(t *testing.T) {
	ctx := context.Background()

	th := newThread(t, ctx)
	id := models.MustRecordIDString(th.ID)

	got, err := testDB.QueryGetThread(ctx, id, testUser)
	if err != nil {
		t.Fatalf("QueryGetThread failed: %v", err)
	}
	if got.Title != "Budget review" {
		t.Errorf("title = %q", got.Title)
	}

	// Wrong user must not see the thread.
	if _, err := testDB.QueryGetThread(ctx, id, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong user, got %v", err)
	}

	list, err := testDB.QueryListThreads(ctx, testUser, 10)
	if err != nil {
		t.Fatalf("QueryListThreads failed: %v", err)
	}
	if len(list) == 0 {
		t.Error("expected at least one thread")
	}

	n, err := testDB.QueryDeleteThread(ctx, id, testUser)
	if err != nil {
		t.Fatalf("QueryDeleteThread failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d threads, want 1", n)
	}
	// Idempotent.
	if n, err = testDB.QueryDeleteThread(ctx, id, testUser); err != nil || n != 0 {
		t.Errorf("second delete: n=%d err=%v", n, err)
	}
}

func TestLatestAnalysisForThread(t *testing.T) {
	ctx := context.Background()

	th := newThread(t, ctx)
	threadID := models.MustRecordIDString(th.ID)

	first := newAnalysis(t, ctx, threadID)
	time.Sleep(10 * time.Millisecond)
	second := newAnalysis(t, ctx, threadID)

	latest, err := testDB.QueryLatestAnalysisForThread(ctx, threadID, testUser)
	if err != nil {
		t.Fatalf("QueryLatestAnalysisForThread failed: %v", err)
	}
	if models.MustRecordIDString(latest.ID) != models.MustRecordIDString(second.ID) {
		t.Errorf("latest = %v, want %v", latest.ID, second.ID)
	}
	_ = first

	if _, err := testDB.QueryLatestAnalysisForThread(ctx, uuid.NewString(), testUser); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unanalyzed thread, got %v", err)
	}
}

func TestTopicBatchGuard(t *testing.T) {
	ctx := context.Background()

	th := newThread(t, ctx)
	a := newAnalysis(t, ctx, models.MustRecordIDString(th.ID))
	analysisID := models.MustRecordIDString(a.ID)

	has, err := testDB.QueryHasTopicBatch(ctx, analysisID)
	if err != nil {
		t.Fatalf("QueryHasTopicBatch failed: %v", err)
	}
	if has {
		t.Fatal("batch should not exist yet")
	}

	seeds := []TopicSeed{
		{ID: uuid.NewString(), Title: "Q3 budget process"},
		{ID: uuid.NewString(), Title: "Revenue forecasting methods"},
	}
	if err := testDB.QueryCreateTopicBatch(ctx, analysisID, testUser, seeds); err != nil {
		t.Fatalf("QueryCreateTopicBatch failed: %v", err)
	}

	// Second create loses the guard and must not duplicate topics.
	err = testDB.QueryCreateTopicBatch(ctx, analysisID, testUser, []TopicSeed{
		{ID: uuid.NewString(), Title: "Duplicate run"},
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	topics, err := testDB.QueryGetTopicsWithResults(ctx, analysisID, testUser)
	if err != nil {
		t.Fatalf("QueryGetTopicsWithResults failed: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("got %d topics, want 2", len(topics))
	}
	for _, tw := range topics {
		if !tw.Loading() {
			t.Errorf("topic %v should be loading before any result", tw.Topic.ID)
		}
		if tw.Result != nil {
			t.Errorf("topic %v has unexpected result", tw.Topic.ID)
		}
	}

	has, err = testDB.QueryHasTopicBatch(ctx, analysisID)
	if err != nil || !has {
		t.Errorf("batch should exist: has=%v err=%v", has, err)
	}
}

func TestEmptyTopicBatchIsPinned(t *testing.T) {
	ctx := context.Background()

	th := newThread(t, ctx)
	a := newAnalysis(t, ctx, models.MustRecordIDString(th.ID))
	analysisID := models.MustRecordIDString(a.ID)

	if err := testDB.QueryCreateTopicBatch(ctx, analysisID, testUser, nil); err != nil {
		t.Fatalf("empty batch create failed: %v", err)
	}

	has, err := testDB.QueryHasTopicBatch(ctx, analysisID)
	if err != nil || !has {
		t.Fatalf("empty batch not recorded: has=%v err=%v", has, err)
	}

	topics, err := testDB.QueryGetTopicsWithResults(ctx, analysisID, testUser)
	if err != nil {
		t.Fatalf("QueryGetTopicsWithResults failed: %v", err)
	}
	if len(topics) != 0 {
		t.Errorf("got %d topics, want 0", len(topics))
	}
}

func TestUpsertResultIdempotent(t *testing.T) {
	ctx := context.Background()

	th := newThread(t, ctx)
	a := newAnalysis(t, ctx, models.MustRecordIDString(th.ID))
	analysisID := models.MustRecordIDString(a.ID)

	topicID := uuid.NewString()
	if err := testDB.QueryCreateTopicBatch(ctx, analysisID, testUser, []TopicSeed{
		{ID: topicID, Title: "Quantum key distribution"},
	}); err != nil {
		t.Fatalf("QueryCreateTopicBatch failed: %v", err)
	}

	first, err := testDB.QueryUpsertResult(ctx, topicID, analysisID, testUser, []byte(`{"title":"v1"}`))
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if first.Status != models.ResultStatusCompleted {
		t.Errorf("status = %q", first.Status)
	}

	// Reprocessing replaces, never duplicates.
	second, err := testDB.QueryUpsertResult(ctx, topicID, analysisID, testUser, []byte(`{"title":"v2"}`))
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if models.MustRecordIDString(second.ID) != models.MustRecordIDString(first.ID) {
		t.Errorf("upsert created a second row: %v vs %v", second.ID, first.ID)
	}
	if second.Content != `{"title":"v2"}` {
		t.Errorf("content = %q, want last write", second.Content)
	}

	topics, err := testDB.QueryGetTopicsWithResults(ctx, analysisID, testUser)
	if err != nil {
		t.Fatalf("QueryGetTopicsWithResults failed: %v", err)
	}
	if len(topics) != 1 {
		t.Fatalf("got %d topics", len(topics))
	}
	tw := topics[0]
	if tw.Result == nil {
		t.Fatal("result not joined")
	}
	if tw.Loading() {
		t.Error("topic still loading after completed result")
	}
	if tw.Topic.IsLoading {
		t.Error("stored is_loading flag not cleared")
	}
}

func TestGetResultByTopic(t *testing.T) {
	ctx := context.Background()

	th := newThread(t, ctx)
	a := newAnalysis(t, ctx, models.MustRecordIDString(th.ID))
	analysisID := models.MustRecordIDString(a.ID)

	topicID := uuid.NewString()
	if err := testDB.QueryCreateTopicBatch(ctx, analysisID, testUser, []TopicSeed{
		{ID: topicID, Title: "Some topic"},
	}); err != nil {
		t.Fatalf("QueryCreateTopicBatch failed: %v", err)
	}

	if _, err := testDB.QueryGetResultByTopic(ctx, topicID, testUser); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound before upsert, got %v", err)
	}

	if _, err := testDB.QueryUpsertResult(ctx, topicID, analysisID, testUser, []byte(`{}`)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := testDB.QueryGetResultByTopic(ctx, topicID, testUser)
	if err != nil {
		t.Fatalf("QueryGetResultByTopic failed: %v", err)
	}
	if got.Content != "{}" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestTodoLifecycle(t *testing.T) {
	ctx := context.Background()

	th := newThread(t, ctx)
	a := newAnalysis(t, ctx, models.MustRecordIDString(th.ID))

	assignee := "Bob"
	todo, err := testDB.QueryCreateTodo(ctx, uuid.NewString(), testUser,
		models.MustRecordIDString(a.ID), models.MustRecordIDString(th.ID),
		"Send Q3 numbers", &assignee, models.PriorityHigh, nil)
	if err != nil {
		t.Fatalf("QueryCreateTodo failed: %v", err)
	}
	if todo.Completed {
		t.Error("new todo should not be completed")
	}

	done, err := testDB.QuerySetTodoCompleted(ctx, models.MustRecordIDString(todo.ID), testUser, true)
	if err != nil {
		t.Fatalf("QuerySetTodoCompleted failed: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil {
		t.Errorf("completed=%v completed_at=%v", done.Completed, done.CompletedAt)
	}

	reopened, err := testDB.QuerySetTodoCompleted(ctx, models.MustRecordIDString(todo.ID), testUser, false)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.Completed || reopened.CompletedAt != nil {
		t.Errorf("reopen left completed=%v completed_at=%v", reopened.Completed, reopened.CompletedAt)
	}

	n, err := testDB.QueryDeleteTodo(ctx, models.MustRecordIDString(todo.ID), testUser)
	if err != nil || n != 1 {
		t.Errorf("delete: n=%d err=%v", n, err)
	}
}

func TestEventLifecycle(t *testing.T) {
	ctx := context.Background()

	start := time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC)
	ev, err := testDB.QueryCreateEvent(ctx, uuid.NewString(), testUser, "", "", models.EventInput{
		Title:     "Q3 numbers due",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}, "deadline", "by Friday")
	if err != nil {
		t.Fatalf("QueryCreateEvent failed: %v", err)
	}
	if ev.Color != "blue" {
		t.Errorf("default color = %q", ev.Color)
	}
	if ev.SourceType != "deadline" {
		t.Errorf("source_type = %q", ev.SourceType)
	}

	from := "2026-09-01T00:00:00Z"
	to := "2026-09-08T00:00:00Z"
	list, err := testDB.QueryListEvents(ctx, testUser, &from, &to)
	if err != nil {
		t.Fatalf("QueryListEvents failed: %v", err)
	}
	found := false
	for _, e := range list {
		if models.MustRecordIDString(e.ID) == models.MustRecordIDString(ev.ID) {
			found = true
		}
	}
	if !found {
		t.Error("event not returned in range query")
	}

	updated, err := testDB.QueryUpdateEvent(ctx, models.MustRecordIDString(ev.ID), testUser, models.EventInput{
		Title:     "Q3 numbers due (moved)",
		StartTime: start.Add(24 * time.Hour),
		EndTime:   start.Add(25 * time.Hour),
		Color:     "red",
	})
	if err != nil {
		t.Fatalf("QueryUpdateEvent failed: %v", err)
	}
	if updated.Title != "Q3 numbers due (moved)" || updated.Color != "red" {
		t.Errorf("update not applied: %+v", updated)
	}

	n, err := testDB.QueryDeleteEvent(ctx, models.MustRecordIDString(ev.ID), testUser)
	if err != nil || n != 1 {
		t.Errorf("delete: n=%d err=%v", n, err)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()

	user := "stats-user"
	th, err := testDB.QueryCreateThread(ctx, uuid.NewString(), user, "t", "c")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}
	a, err := testDB.QueryCreateAnalysis(ctx, uuid.NewString(), models.MustRecordIDString(th.ID), user, models.Extraction{}, "")
	if err != nil {
		t.Fatalf("create analysis: %v", err)
	}
	topicID := uuid.NewString()
	if err := testDB.QueryCreateTopicBatch(ctx, models.MustRecordIDString(a.ID), user, []TopicSeed{
		{ID: topicID, Title: "x"},
	}); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	s, err := testDB.QueryStats(ctx, user)
	if err != nil {
		t.Fatalf("QueryStats failed: %v", err)
	}
	if s.Threads != 1 || s.Analyses != 1 || s.Topics != 1 || s.PendingTopics != 1 {
		t.Errorf("stats = %+v", s)
	}

	if _, err := testDB.QueryUpsertResult(ctx, topicID, models.MustRecordIDString(a.ID), user, []byte(`{}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	s, err = testDB.QueryStats(ctx, user)
	if err != nil {
		t.Fatalf("QueryStats failed: %v", err)
	}
	if s.Results != 1 || s.PendingTopics != 0 {
		t.Errorf("stats after result = %+v", s)
	}
}
