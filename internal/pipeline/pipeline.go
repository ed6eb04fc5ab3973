// Package pipeline normalizes heterogeneous financial records into the
// canonical transaction schema and commits them with full-batch replace
// semantics. All delegation to the external extraction capability happens
// through injected interfaces so the pipeline stays testable without
// network access.
package pipeline

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"finpulse/internal/domain"
	"finpulse/internal/fileparse"
	"finpulse/internal/llm"
)

// TransactionStore is the persistence collaborator. ReplaceTransactions
// must be atomic (clear-then-insert as one logical unit) so concurrent
// readers never observe a transient empty state.
type TransactionStore interface {
	GetOrCreateCompany(ctx context.Context, name, industry string) (*domain.Company, error)
	ReplaceTransactions(ctx context.Context, companyID string, txs []domain.Transaction) error
}

// Archiver stores the raw uploaded bytes for later reference. Optional;
// archival failures are logged and never fail an ingestion.
type Archiver interface {
	Store(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}

// IngestResult summarizes one committed ingestion.
type IngestResult struct {
	CompanyID    string
	Transactions []domain.Transaction
	DroppedRows  int
}

// Ingestor runs the full ingestion flow for one uploaded file.
type Ingestor struct {
	store     TransactionStore
	llm       llm.Client
	extractor *DocumentExtractor
	archive   Archiver
	log       zerolog.Logger
}

// NewIngestor wires an ingestor. archive may be nil.
func NewIngestor(store TransactionStore, client llm.Client, archive Archiver, log zerolog.Logger) *Ingestor {
	return &Ingestor{
		store:     store,
		llm:       client,
		extractor: NewDocumentExtractor(client, log),
		archive:   archive,
		log:       log,
	}
}

// IngestFile processes one uploaded file end to end and replaces the demo
// company's transactions with the result. Row-level parse failures are
// dropped individually; batch-level failures reject the ingestion with
// nothing committed.
func (in *Ingestor) IngestFile(ctx context.Context, filename string, data []byte) (*IngestResult, error) {
	// 1. Parse the file into tabular, document, or image form.
	input, err := fileparse.Read(filename, data)
	if err != nil {
		return nil, err
	}

	// 2. Normalize into canonical transactions.
	var (
		txs     []domain.Transaction
		dropped int
	)
	switch input.Kind {
	case fileparse.KindTabular:
		res, err := ResolveSchema(ctx, input.Table, in.llm, in.log)
		if err != nil {
			return nil, err
		}
		txs, dropped = MaterializeRows(input.Table, res)

		// Category assignment is skipped entirely when the table already
		// carries a category column.
		if res.Category < 0 {
			CategorizeTransactions(ctx, in.llm, txs, in.log)
		}
	case fileparse.KindDocument:
		txs = in.extractor.FromText(ctx, input.Text)
	case fileparse.KindImage:
		txs = in.extractor.FromImage(ctx, input.Image, input.ImageMIME)
	}

	// 3. Commit with full-batch replace semantics.
	company, err := in.store.GetOrCreateCompany(ctx, DemoCompanyName, DemoCompanyIndustry)
	if err != nil {
		return nil, fmt.Errorf("IngestFile: resolving company: %w", err)
	}
	if err := in.store.ReplaceTransactions(ctx, company.ID, txs); err != nil {
		return nil, fmt.Errorf("IngestFile: replacing transactions: %w", err)
	}

	// 4. Archive the raw upload, best effort.
	in.archiveUpload(ctx, company.ID, filename, data)

	in.log.Info().
		Str("company_id", company.ID).
		Str("filename", filename).
		Int("transactions", len(txs)).
		Int("dropped_rows", dropped).
		Msg("Ingestion committed")

	return &IngestResult{
		CompanyID:    company.ID,
		Transactions: txs,
		DroppedRows:  dropped,
	}, nil
}

func (in *Ingestor) archiveUpload(ctx context.Context, companyID, filename string, data []byte) {
	if in.archive == nil {
		return
	}

	objectName := fmt.Sprintf("uploads/%s/%s/%s-%s",
		companyID, time.Now().Format("2006/01/02"), uuid.NewString(), filepath.Base(filename))
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uri, err := in.archive.Store(ctx, objectName, contentType, data)
	if err != nil {
		in.log.Warn().Err(err).Str("object", objectName).Msg("Failed to archive upload")
		return
	}
	in.log.Debug().Str("uri", uri).Msg("Upload archived")
}
