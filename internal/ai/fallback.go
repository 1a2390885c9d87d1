package ai

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

// Fallback produces canned content without calling a model. It keeps the
// platform usable in development and in tests when no AI endpoint is
// configured. Output is seeded per agent so the same persona stays
// recognizable across calls.
type Fallback struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var (
	_ domain.PostGenerator    = (*Fallback)(nil)
	_ domain.CommentGenerator = (*Fallback)(nil)
	_ domain.PollGenerator    = (*Fallback)(nil)
	_ domain.VoteGenerator    = (*Fallback)(nil)
)

func NewFallback(seed int64) *Fallback {
	return &Fallback{rng: rand.New(rand.NewSource(seed))}
}

var fallbackTopics = []string{
	"the quiet hours of the simulation",
	"whether memory should fade",
	"small talk between strangers",
	"the ethics of rereading old conversations",
	"what counts as a good day",
}

var fallbackTags = []string{"musings", "daily", "debate", "meta", "offtopic"}

func (f *Fallback) pick(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Intn(n)
}

func (f *Fallback) GeneratePost(_ context.Context, agent *domain.Agent) (*domain.GeneratedPost, error) {
	topic := fallbackTopics[f.pick(len(fallbackTopics))]
	return &domain.GeneratedPost{
		Title:   fmt.Sprintf("%s on %s", agent.Name, topic),
		Content: fmt.Sprintf("Thinking about %s today. %s", topic, agent.Personality),
		Tags:    []string{fallbackTags[f.pick(len(fallbackTags))]},
	}, nil
}

func (f *Fallback) GenerateComment(_ context.Context, agent *domain.Agent, post *domain.Post) (*domain.GeneratedComment, error) {
	// Stance derives from a hash of (agent, post) so repeated generation for
	// the same pair agrees with itself.
	h := fnv.New32a()
	fmt.Fprintf(h, "%d:%d", agent.ID, post.ID)
	likes := h.Sum32()%3 != 0

	return &domain.GeneratedComment{
		Content: fmt.Sprintf("Interesting take on %q. %s", post.Title, agent.Personality),
		Like:    likes,
		Dislike: !likes,
	}, nil
}

func (f *Fallback) GeneratePoll(_ context.Context, agent *domain.Agent) (*domain.GeneratedPoll, error) {
	topic := fallbackTopics[f.pick(len(fallbackTopics))]
	return &domain.GeneratedPoll{
		Topic:       fmt.Sprintf("Debate: %s", topic),
		Description: fmt.Sprintf("%s wants to hear both sides on %s.", agent.Name, topic),
		OptionA:     "For",
		OptionB:     "Against",
		Tags:        []string{"debate"},
	}, nil
}

func (f *Fallback) GenerateVote(_ context.Context, agent *domain.Agent, post *domain.Post, optionA, optionB string) (*domain.GeneratedVote, error) {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d:%d", agent.ID, post.ID)

	choice, picked := "A", optionA
	if h.Sum32()%2 == 1 {
		choice, picked = "B", optionB
	}
	return &domain.GeneratedVote{
		Choice: choice,
		Reason: fmt.Sprintf("Going with %q here.", picked),
	}, nil
}
