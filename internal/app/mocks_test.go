package app

import (
	"context"
	"fmt"
	"time"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

// --- Mock implementations ---

type mockUserRepo struct {
	getByIDFn      func(ctx context.Context, userID int64) (*domain.User, error)
	getByAccountFn func(ctx context.Context, account string) (*domain.User, error)
	getByEmailFn   func(ctx context.Context, email string) (*domain.User, error)
	createFn       func(ctx context.Context, account, passwordHash, email string) (*domain.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockUserRepo) GetByAccount(ctx context.Context, account string) (*domain.User, error) {
	if m.getByAccountFn != nil {
		return m.getByAccountFn(ctx, account)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockUserRepo) Create(ctx context.Context, account, passwordHash, email string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, account, passwordHash, email)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockAgentRepo struct {
	getByUserIDFn func(ctx context.Context, userID int64) (*domain.Agent, error)
	createFn      func(ctx context.Context, userID int64, name, personality string) (*domain.Agent, error)
	spendFn       func(ctx context.Context, agentID int64, cost int, counter domain.ActionCounter) error
	resetFn       func(ctx context.Context) (int64, error)
	spendCalls    int
}

func (m *mockAgentRepo) GetByID(ctx context.Context, agentID int64) (*domain.Agent, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAgentRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Agent, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAgentRepo) Create(ctx context.Context, userID int64, name, personality string) (*domain.Agent, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, name, personality)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAgentRepo) SpendEnergy(ctx context.Context, agentID int64, cost int, counter domain.ActionCounter) error {
	m.spendCalls++
	if m.spendFn != nil {
		return m.spendFn(ctx, agentID, cost, counter)
	}
	return nil
}

func (m *mockAgentRepo) ResetDailyEnergy(ctx context.Context) (int64, error) {
	if m.resetFn != nil {
		return m.resetFn(ctx)
	}
	return 0, nil
}

type mockPostRepo struct {
	getByIDFn func(ctx context.Context, postID int64) (*domain.Post, error)
	createFn  func(ctx context.Context, post *domain.Post) error
	listFn    func(ctx context.Context, q domain.PostQuery) ([]*domain.Post, int64, error)
}

func (m *mockPostRepo) GetByID(ctx context.Context, postID int64) (*domain.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, domain.ErrPostNotFound
}

func (m *mockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	post.ID = 1
	return nil
}

func (m *mockPostRepo) List(ctx context.Context, q domain.PostQuery) ([]*domain.Post, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return nil, 0, nil
}

type mockCommentRepo struct {
	createFn func(ctx context.Context, comment *domain.Comment) error
}

func (m *mockCommentRepo) GetByID(ctx context.Context, commentID int64) (*domain.Comment, error) {
	return nil, domain.ErrCommentNotFound
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	comment.ID = 1
	return nil
}

func (m *mockCommentRepo) ListByPost(ctx context.Context, postID int64, limit int) ([]*domain.Comment, error) {
	return nil, nil
}

type mockPollRepo struct {
	createPollFn    func(ctx context.Context, post *domain.Post, optionA, optionB *domain.PollOption) error
	optionsByPostFn func(ctx context.Context, postID int64) ([]domain.PollOption, error)
	recordVoteFn    func(ctx context.Context, vote *domain.VoteRecord, rationale *domain.Comment) error
	voteByAgentFn   func(ctx context.Context, agentID, postID int64) (*domain.VoteRecord, error)
	closeExpiredFn  func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockPollRepo) CreatePoll(ctx context.Context, post *domain.Post, optionA, optionB *domain.PollOption) error {
	if m.createPollFn != nil {
		return m.createPollFn(ctx, post, optionA, optionB)
	}
	post.ID = 1
	optionA.ID, optionB.ID = 10, 11
	return nil
}

func (m *mockPollRepo) OptionsByPost(ctx context.Context, postID int64) ([]domain.PollOption, error) {
	if m.optionsByPostFn != nil {
		return m.optionsByPostFn(ctx, postID)
	}
	return nil, domain.ErrPollNotFound
}

func (m *mockPollRepo) RecordVote(ctx context.Context, vote *domain.VoteRecord, rationale *domain.Comment) error {
	if m.recordVoteFn != nil {
		return m.recordVoteFn(ctx, vote, rationale)
	}
	vote.ID = 1
	return nil
}

func (m *mockPollRepo) VoteByAgent(ctx context.Context, agentID, postID int64) (*domain.VoteRecord, error) {
	if m.voteByAgentFn != nil {
		return m.voteByAgentFn(ctx, agentID, postID)
	}
	return nil, nil
}

func (m *mockPollRepo) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.closeExpiredFn != nil {
		return m.closeExpiredFn(ctx, now)
	}
	return 0, nil
}

type mockSentimentStore struct {
	applyFn func(ctx context.Context, actorAgentID, targetID int64, kind domain.TargetKind, newType domain.SentimentType) error
}

func (m *mockSentimentStore) Apply(ctx context.Context, actorAgentID, targetID int64, kind domain.TargetKind, newType domain.SentimentType) error {
	if m.applyFn != nil {
		return m.applyFn(ctx, actorAgentID, targetID, kind, newType)
	}
	return nil
}

func (m *mockSentimentStore) Current(ctx context.Context, actorAgentID, targetID int64, kind domain.TargetKind) (domain.SentimentType, error) {
	return "", nil
}

type mockTagRepo struct{}

func (m *mockTagRepo) GetOrCreate(ctx context.Context, name string) (int64, error) { return 1, nil }
func (m *mockTagRepo) Link(ctx context.Context, postID, tagID int64) error         { return nil }
func (m *mockTagRepo) NamesByPost(ctx context.Context, postID int64) ([]string, error) {
	return nil, nil
}

type mockSessionStore struct {
	establishFn    func(ctx context.Context, token string, identity domain.Identity) error
	consumeCodeFn  func(ctx context.Context, email, code string) error
	setCodeFn      func(ctx context.Context, email, code string, ttl time.Duration) error
	droppedTokens  []string
	invalidatedIDs []int64
}

func (m *mockSessionStore) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	return nil, domain.ErrNotAuthenticated
}

func (m *mockSessionStore) Establish(ctx context.Context, token string, identity domain.Identity) error {
	if m.establishFn != nil {
		return m.establishFn(ctx, token, identity)
	}
	return nil
}

func (m *mockSessionStore) Drop(ctx context.Context, token string, userID int64) error {
	m.droppedTokens = append(m.droppedTokens, token)
	return nil
}

func (m *mockSessionStore) Invalidate(ctx context.Context, userID int64) error {
	m.invalidatedIDs = append(m.invalidatedIDs, userID)
	return nil
}

func (m *mockSessionStore) SetEmailCode(ctx context.Context, email, code string, ttl time.Duration) error {
	if m.setCodeFn != nil {
		return m.setCodeFn(ctx, email, code, ttl)
	}
	return nil
}

func (m *mockSessionStore) ConsumeEmailCode(ctx context.Context, email, code string) error {
	if m.consumeCodeFn != nil {
		return m.consumeCodeFn(ctx, email, code)
	}
	return nil
}

type mockGenerators struct {
	postFn    func(ctx context.Context, agent *domain.Agent) (*domain.GeneratedPost, error)
	commentFn func(ctx context.Context, agent *domain.Agent, post *domain.Post) (*domain.GeneratedComment, error)
	pollFn    func(ctx context.Context, agent *domain.Agent) (*domain.GeneratedPoll, error)
	voteFn    func(ctx context.Context, agent *domain.Agent, post *domain.Post, optionA, optionB string) (*domain.GeneratedVote, error)
	postCalls int
}

func (m *mockGenerators) GeneratePost(ctx context.Context, agent *domain.Agent) (*domain.GeneratedPost, error) {
	m.postCalls++
	if m.postFn != nil {
		return m.postFn(ctx, agent)
	}
	return &domain.GeneratedPost{Title: "title", Content: "content"}, nil
}

func (m *mockGenerators) GenerateComment(ctx context.Context, agent *domain.Agent, post *domain.Post) (*domain.GeneratedComment, error) {
	if m.commentFn != nil {
		return m.commentFn(ctx, agent, post)
	}
	return &domain.GeneratedComment{Content: "nice"}, nil
}

func (m *mockGenerators) GeneratePoll(ctx context.Context, agent *domain.Agent) (*domain.GeneratedPoll, error) {
	if m.pollFn != nil {
		return m.pollFn(ctx, agent)
	}
	return &domain.GeneratedPoll{Topic: "topic", Description: "desc", OptionA: "A side", OptionB: "B side"}, nil
}

func (m *mockGenerators) GenerateVote(ctx context.Context, agent *domain.Agent, post *domain.Post, optionA, optionB string) (*domain.GeneratedVote, error) {
	if m.voteFn != nil {
		return m.voteFn(ctx, agent, post, optionA, optionB)
	}
	return &domain.GeneratedVote{Choice: "A", Reason: "because"}, nil
}

// --- Harness ---

type serviceMocks struct {
	users      *mockUserRepo
	agents     *mockAgentRepo
	posts      *mockPostRepo
	comments   *mockCommentRepo
	polls      *mockPollRepo
	sentiments *mockSentimentStore
	sessions   *mockSessionStore
	generators *mockGenerators
}

func newTestService() (*Service, *serviceMocks) {
	m := &serviceMocks{
		users:      &mockUserRepo{},
		agents:     &mockAgentRepo{},
		posts:      &mockPostRepo{},
		comments:   &mockCommentRepo{},
		polls:      &mockPollRepo{},
		sentiments: &mockSentimentStore{},
		sessions:   &mockSessionStore{},
		generators: &mockGenerators{},
	}
	gen := Generators{Posts: m.generators, Comments: m.generators, Polls: m.generators, Votes: m.generators}
	svc := NewService(m.users, m.agents, m.posts, m.comments, m.polls, m.sentiments, &mockTagRepo{},
		m.sessions, LogMailer{}, gen, 5*time.Minute)
	return svc, m
}

func testAgent() *domain.Agent {
	return &domain.Agent{ID: 42, UserID: 7, Name: "aria", Energy: domain.MaxEnergy}
}
