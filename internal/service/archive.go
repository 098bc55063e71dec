package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"
)

const archiveURLTTL = 15 * time.Minute

// ArchiveInfo describes one stored account snapshot.
type ArchiveInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
	URL          string
}

// Archiver writes account snapshots as JSON documents to object storage,
// one key per deleted account under <prefix>/<userID>/.
type Archiver struct {
	store  storage.Service
	prefix string
	now    func() time.Time
}

func NewArchiver(store storage.Service, prefix string) *Archiver {
	return &Archiver{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// Archive stores the snapshot and returns its key.
func (a *Archiver) Archive(ctx context.Context, snapshot domain.AccountSnapshot) (string, error) {
	snapshot.TakenAt = a.now().UTC()
	body, err := json.MarshalIndent(newArchiveDocument(snapshot), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := path.Join(a.userPrefix(snapshot.Account.UserID),
		fmt.Sprintf("%s-%s.json", snapshot.Account.ID, snapshot.TakenAt.Format("20060102T150405Z")))
	if err := a.store.Put(ctx, key, "application/json", body); err != nil {
		return "", err
	}
	return key, nil
}

// List returns the user's archives with short-lived download links.
func (a *Archiver) List(ctx context.Context, userID string) ([]ArchiveInfo, error) {
	objects, err := a.store.ListObjects(ctx, a.userPrefix(userID)+"/")
	if err != nil {
		return nil, err
	}

	archives := make([]ArchiveInfo, 0, len(objects))
	for _, obj := range objects {
		url, err := a.store.GetObjectURL(ctx, obj.Key, archiveURLTTL)
		if err != nil {
			return nil, err
		}
		archives = append(archives, ArchiveInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			URL:          url,
		})
	}
	return archives, nil
}

func (a *Archiver) userPrefix(userID string) string {
	if a.prefix == "" {
		return userID
	}
	return a.prefix + "/" + userID
}

type archiveDocument struct {
	TakenAt      time.Time            `json:"takenAt"`
	Account      archiveAccount       `json:"account"`
	Categories   []archiveCategory    `json:"categories"`
	Transactions []archiveTransaction `json:"transactions"`
}

type archiveAccount struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type archiveCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
}

type archiveTransaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description *string         `json:"description"`
	CategoryID  *string         `json:"categoryId"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func newArchiveDocument(s domain.AccountSnapshot) archiveDocument {
	doc := archiveDocument{
		TakenAt: s.TakenAt,
		Account: archiveAccount{
			ID:        s.Account.ID,
			Name:      s.Account.Name,
			Balance:   s.Account.Balance,
			Currency:  string(s.Account.Currency),
			CreatedAt: s.Account.CreatedAt,
			UpdatedAt: s.Account.UpdatedAt,
		},
		Categories:   make([]archiveCategory, 0, len(s.Categories)),
		Transactions: make([]archiveTransaction, 0, len(s.Transactions)),
	}
	for _, c := range s.Categories {
		doc.Categories = append(doc.Categories, archiveCategory{
			ID:          c.ID,
			Name:        c.Name,
			Domain:      string(c.Domain),
			Description: c.Description,
		})
	}
	for _, t := range s.Transactions {
		doc.Transactions = append(doc.Transactions, archiveTransaction{
			ID:          t.ID,
			Amount:      t.Amount,
			Type:        string(t.Type),
			Description: t.Description,
			CategoryID:  t.CategoryID,
			CreatedAt:   t.CreatedAt,
		})
	}
	return doc
}
