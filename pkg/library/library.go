// Package library manages a persistent collection of analyzed bills.
//
// The core operations are pure functions over one string; the library is the
// ingestion collaborator around them. It stores the raw text of each bill
// together with the three derived views as JSON, keyed by bill ID. There is
// no incremental mode: re-ingesting a bill re-runs all three operations and
// replaces the prior stored results.
package library

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/coolbeans/billscan/pkg/article"
	"github.com/coolbeans/billscan/pkg/coderef"
	"github.com/coolbeans/billscan/pkg/complexity"
	"github.com/coolbeans/billscan/pkg/consistency"
)

const (
	manifestFileName = "library.json"
	billsDir         = "bills"
	sourceFileName   = "source.txt"
	analysisFileName = "analysis.json"
	manifestVersion  = "1.0.0"
)

// Analysis bundles the three derived views of one bill plus the consistency
// report over them.
type Analysis struct {
	BillID       string              `json:"bill_id"`
	SourceSHA256 string              `json:"source_sha256"`
	IngestedAt   time.Time           `json:"ingested_at"`
	Articles     []article.Article   `json:"articles"`
	References   []coderef.Reference `json:"references"`
	Complexity   complexity.Result   `json:"complexity"`
	Consistency  *consistency.Report `json:"consistency"`
}

// BillEntry is the manifest row for one ingested bill.
type BillEntry struct {
	BillID       string           `json:"bill_id"`
	SourceSHA256 string           `json:"source_sha256"`
	IngestedAt   time.Time        `json:"ingested_at"`
	ArticleCount int              `json:"article_count"`
	SectionCount int              `json:"section_count"`
	Complexity   complexity.Level `json:"complexity"`
}

// Manifest is the on-disk index of the library.
type Manifest struct {
	Version   string       `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Bills     []*BillEntry `json:"bills"`
}

// Library is a directory-backed store of analyzed bills. Safe for concurrent
// use.
type Library struct {
	mu       sync.RWMutex
	path     string
	manifest *Manifest
	logger   *zap.Logger
}

// Init creates a new library at path.
func Init(path string, logger *zap.Logger) (*Library, error) {
	if err := os.MkdirAll(filepath.Join(path, billsDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	lib := &Library{
		path: path,
		manifest: &Manifest{
			Version:   manifestVersion,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
			Bills:     []*BillEntry{},
		},
		logger: orNop(logger),
	}

	if err := lib.saveManifest(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Open loads an existing library from disk.
func Open(path string, logger *zap.Logger) (*Library, error) {
	data, err := os.ReadFile(filepath.Join(path, manifestFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read library manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse library manifest: %w", err)
	}

	return &Library{path: path, manifest: &manifest, logger: orNop(logger)}, nil
}

// OpenOrInit opens the library at path, creating it when absent.
func OpenOrInit(path string, logger *zap.Logger) (*Library, error) {
	if _, err := os.Stat(filepath.Join(path, manifestFileName)); err == nil {
		return Open(path, logger)
	}
	return Init(path, logger)
}

// Ingest runs all three analysis operations plus the consistency gate over
// sourceText, stores the results under billID, and replaces any prior
// results for that bill.
func (lib *Library) Ingest(billID string, sourceText string) (*BillEntry, error) {
	if err := validateBillID(billID); err != nil {
		return nil, err
	}

	lib.mu.Lock()
	defer lib.mu.Unlock()

	articles := article.Parse(sourceText)
	refs := coderef.Parse(sourceText)
	result := complexity.Detect(sourceText)
	report := consistency.Check(articles, refs, result)

	sum := sha256.Sum256([]byte(sourceText))
	analysis := &Analysis{
		BillID:       billID,
		SourceSHA256: hex.EncodeToString(sum[:]),
		IngestedAt:   time.Now().UTC(),
		Articles:     articles,
		References:   refs,
		Complexity:   result,
		Consistency:  report,
	}

	billPath := filepath.Join(lib.path, billsDir, billID)
	if err := os.MkdirAll(billPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bill directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(billPath, sourceFileName), []byte(sourceText), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write bill source: %w", err)
	}
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize analysis: %w", err)
	}
	if err := os.WriteFile(filepath.Join(billPath, analysisFileName), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write analysis: %w", err)
	}

	entry := &BillEntry{
		BillID:       billID,
		SourceSHA256: analysis.SourceSHA256,
		IngestedAt:   analysis.IngestedAt,
		ArticleCount: result.ArticleCount,
		SectionCount: result.SectionCount,
		Complexity:   result.Complexity,
	}
	lib.upsertEntry(entry)

	if err := lib.saveManifest(); err != nil {
		return nil, err
	}

	lib.logger.Info("ingested bill",
		zap.String("bill_id", billID),
		zap.Int("articles", result.ArticleCount),
		zap.Int("sections", result.SectionCount),
		zap.Int("references", len(refs)),
		zap.String("complexity", string(result.Complexity)),
		zap.Bool("consistent", report.Passed))

	return entry, nil
}

// Get loads the stored analysis for billID.
func (lib *Library) Get(billID string) (*Analysis, error) {
	if err := validateBillID(billID); err != nil {
		return nil, err
	}

	lib.mu.RLock()
	defer lib.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(lib.path, billsDir, billID, analysisFileName))
	if err != nil {
		return nil, fmt.Errorf("bill %q not found: %w", billID, err)
	}

	var analysis Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse stored analysis: %w", err)
	}
	return &analysis, nil
}

// List returns the manifest entries sorted by bill ID.
func (lib *Library) List() []*BillEntry {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	entries := make([]*BillEntry, len(lib.manifest.Bills))
	copy(entries, lib.manifest.Bills)
	sort.Slice(entries, func(i, j int) bool { return entries[i].BillID < entries[j].BillID })
	return entries
}

// Remove deletes a bill and its stored results.
func (lib *Library) Remove(billID string) error {
	if err := validateBillID(billID); err != nil {
		return err
	}

	lib.mu.Lock()
	defer lib.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(lib.path, billsDir, billID)); err != nil {
		return fmt.Errorf("failed to remove bill: %w", err)
	}

	bills := lib.manifest.Bills[:0]
	for _, e := range lib.manifest.Bills {
		if e.BillID != billID {
			bills = append(bills, e)
		}
	}
	lib.manifest.Bills = bills

	lib.logger.Info("removed bill", zap.String("bill_id", billID))
	return lib.saveManifest()
}

func (lib *Library) upsertEntry(entry *BillEntry) {
	for i, e := range lib.manifest.Bills {
		if e.BillID == entry.BillID {
			lib.manifest.Bills[i] = entry
			return
		}
	}
	lib.manifest.Bills = append(lib.manifest.Bills, entry)
}

func (lib *Library) saveManifest() error {
	lib.manifest.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(lib.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(lib.path, manifestFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}

func validateBillID(billID string) error {
	if billID == "" {
		return fmt.Errorf("bill ID is required")
	}
	if strings.ContainsAny(billID, `/\`) || billID == "." || billID == ".." {
		return fmt.Errorf("invalid bill ID %q", billID)
	}
	return nil
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
