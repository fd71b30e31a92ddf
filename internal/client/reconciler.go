package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/raphaelgruber/mailbrief/internal/models"
	"github.com/raphaelgruber/mailbrief/internal/service"
)

// Phase is the reconciler's top-level state.
type Phase int

const (
	// PhaseIdle means research has not been started.
	PhaseIdle Phase = iota
	// PhaseIdentifying means the identify call is in flight.
	PhaseIdentifying
	// PhaseResearching means topics exist and are being processed serially.
	PhaseResearching
	// PhaseDone means every topic has settled (completed or failed).
	PhaseDone
)

// TopicState is one topic's settled-ness.
type TopicState int

const (
	// TopicLoading means no result exists yet.
	TopicLoading TopicState = iota
	// TopicCompleted means a result brief is stored.
	TopicCompleted
	// TopicFailed means processing errored; eligible for manual retry.
	TopicFailed
)

// TopicProgress is the per-topic view the reconciler maintains. Topics are
// tracked by their stable id; titles are display-only and never used for
// matching because distinct topics can share text.
type TopicProgress struct {
	ID    string
	Topic string
	State TopicState
	TLDR  []string
}

// Snapshot is what observers receive after every state change.
type Snapshot struct {
	Phase   Phase
	Topics  []TopicProgress
	Settled int
}

// Reconciler drives the client side of the research pipeline: identify once,
// then process each unsettled topic serially, reconciling against whatever
// the server already has so a reconnecting client never re-processes settled
// topics or re-triggers identification.
type Reconciler struct {
	client       *Client
	analysisID   string
	emailContent string
	onUpdate     func(Snapshot)

	mu      sync.Mutex
	started bool
	phase   Phase
	topics  []TopicProgress
}

// NewReconciler creates a reconciler for one analysis. onUpdate may be nil.
func NewReconciler(c *Client, analysisID, emailContent string, onUpdate func(Snapshot)) *Reconciler {
	if onUpdate == nil {
		onUpdate = func(Snapshot) {}
	}
	return &Reconciler{
		client:       c,
		analysisID:   analysisID,
		emailContent: emailContent,
		onUpdate:     onUpdate,
		phase:        PhaseIdle,
	}
}

// Snapshot returns the current state.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Reconciler) snapshotLocked() Snapshot {
	topics := make([]TopicProgress, len(r.topics))
	copy(topics, r.topics)
	settled := 0
	for _, t := range topics {
		if t.State != TopicLoading {
			settled++
		}
	}
	return Snapshot{Phase: r.phase, Topics: topics, Settled: settled}
}

func (r *Reconciler) publish() {
	r.mu.Lock()
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.onUpdate(snap)
}

// Run executes the full pipeline. It is one-shot: a second call returns
// immediately without re-identifying or re-processing.
func (r *Reconciler) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = true
	r.phase = PhaseIdentifying
	r.mu.Unlock()
	r.publish()

	ident, err := r.client.Identify(ctx, r.analysisID, r.emailContent)
	if err != nil {
		r.mu.Lock()
		r.phase = PhaseDone
		r.mu.Unlock()
		r.publish()
		return fmt.Errorf("identify: %w", err)
	}

	r.mu.Lock()
	r.topics = seedTopics(ident.Topics)
	if len(r.topics) == 0 {
		r.phase = PhaseDone
	} else {
		r.phase = PhaseResearching
	}
	r.mu.Unlock()
	r.publish()

	// Serial processing: one research workflow in flight at a time, in the
	// server's topic order.
	for _, t := range r.Snapshot().Topics {
		if t.State != TopicLoading {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		r.processOne(ctx, t.ID)
	}

	r.mu.Lock()
	r.phase = PhaseDone
	r.mu.Unlock()
	r.publish()
	return nil
}

// Retry re-processes a single failed topic, identified by id.
func (r *Reconciler) Retry(ctx context.Context, topicID string) error {
	r.mu.Lock()
	found := false
	for i := range r.topics {
		if r.topics[i].ID == topicID {
			r.topics[i].State = TopicLoading
			found = true
			break
		}
	}
	r.mu.Unlock()
	if !found {
		return fmt.Errorf("retry: unknown topic %s", topicID)
	}
	r.publish()

	r.processOne(ctx, topicID)
	return nil
}

// processOne runs one topic through the process endpoint and records the
// outcome. Transport errors and degraded results both mark the topic failed;
// the distinction lives server-side in the stored brief.
func (r *Reconciler) processOne(ctx context.Context, topicID string) {
	r.mu.Lock()
	var title string
	for _, t := range r.topics {
		if t.ID == topicID {
			title = t.Topic
			break
		}
	}
	r.mu.Unlock()

	resp, err := r.client.Process(ctx, service.ProcessRequest{
		AnalysisID:   r.analysisID,
		TopicID:      topicID,
		Topic:        title,
		EmailContent: r.emailContent,
	})

	r.mu.Lock()
	for i := range r.topics {
		if r.topics[i].ID != topicID {
			continue
		}
		switch {
		case err != nil:
			r.topics[i].State = TopicFailed
		case !resp.Success:
			r.topics[i].State = TopicFailed
			if resp.Result != nil {
				r.topics[i].TLDR = resp.Result.TLDR
			}
		default:
			r.topics[i].State = TopicCompleted
			if resp.Result != nil {
				r.topics[i].TLDR = resp.Result.TLDR
			}
		}
		break
	}
	r.mu.Unlock()
	r.publish()
}

// seedTopics reconciles the identify response into initial per-topic state:
// topics the server already finished start out completed.
func seedTopics(views []models.TopicView) []TopicProgress {
	topics := make([]TopicProgress, len(views))
	for i, v := range views {
		state := TopicLoading
		if !v.IsLoading {
			state = TopicCompleted
		}
		topics[i] = TopicProgress{
			ID:    v.ID,
			Topic: v.Topic,
			State: state,
			TLDR:  v.TLDR,
		}
	}
	return topics
}
