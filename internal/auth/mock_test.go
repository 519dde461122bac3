package auth

import (
	"context"
	"sync"

	"github.com/hitoshi/taskman/internal/model"
)

// --- モック ---

type mockUserStore struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

// usersByID はIDとメールアドレスで引けるユーザー一覧からmockUserStoreを作る。
func usersByID(users ...*model.User) *mockUserStore {
	return &mockUserStore{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			for _, u := range users {
				if u.ID == id {
					return u, nil
				}
			}
			return nil, nil
		},
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			for _, u := range users {
				if u.Email == email {
					return u, nil
				}
			}
			return nil, nil
		},
	}
}

type recordingMetrics struct {
	mu         sync.Mutex
	signIns    []string
	issued     []model.TokenType
	rejections []string
}

func (r *recordingMetrics) RecordSignIn(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signIns = append(r.signIns, outcome)
}

func (r *recordingMetrics) RecordTokenIssued(tokenType model.TokenType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued = append(r.issued, tokenType)
}

func (r *recordingMetrics) RecordTokenRejection(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections = append(r.rejections, reason)
}
