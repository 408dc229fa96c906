package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/refresher/internal/idgen"
	"github.com/viant/refresher/model/transaction"
	"github.com/viant/refresher/service/dao"
	"github.com/viant/refresher/service/tracker"
)

// Service implements a filesystem-based transaction tracker. Each
// transaction is stored as a JSON document under basePath; terminal
// transitions rewrite the document after the state machine accepts them.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.Mutex
}

// Ensure Service implements tracker.Service
var _ tracker.Service = (*Service)(nil)

// Create registers a new pending transaction and persists it.
func (s *Service) Create(ctx context.Context, accountID, kind string) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("accountID cannot be empty")
	}
	trans := transaction.New(idgen.New(), accountID, kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, trans); err != nil {
		return "", err
	}
	return trans.ID, nil
}

// MarkDone moves a pending transaction to done and persists it.
func (s *Service) MarkDone(ctx context.Context, id string) error {
	return s.settle(ctx, id, func(t *transaction.Transaction) error {
		return t.Complete()
	})
}

// MarkFailed moves a pending transaction to failed and persists it.
func (s *Service) MarkFailed(ctx context.Context, id string, reason string) error {
	return s.settle(ctx, id, func(t *transaction.Transaction) error {
		return t.Fail(reason)
	})
}

// Get loads a transaction from the filesystem.
func (s *Service) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, id)
}

func (s *Service) settle(ctx context.Context, id string, transition func(*transaction.Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trans, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := transition(trans); err != nil {
		return err
	}
	return s.save(ctx, trans)
}

func (s *Service) save(ctx context.Context, trans *transaction.Transaction) error {
	data, err := json.Marshal(trans)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	filePath := s.transactionPath(trans.ID)
	if err := s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save transaction to file %s: %w", filePath, err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*transaction.Transaction, error) {
	if id == "" {
		return nil, fmt.Errorf("transaction ID cannot be empty")
	}
	filePath := s.transactionPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if transaction exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("transaction %s: %w", id, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction file: %w", err)
	}
	var trans transaction.Transaction
	if err := json.Unmarshal(data, &trans); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction data: %w", err)
	}
	return &trans, nil
}

// transactionPath returns the file path for a transaction
func (s *Service) transactionPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a new filesystem transaction tracker
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	fs := afs.New()

	ctx := context.Background()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}

	basePath = url.Normalize(basePath, file.Scheme)

	return &Service{
		basePath: basePath,
		fs:       fs,
	}, nil
}
