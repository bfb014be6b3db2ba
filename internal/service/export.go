package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nurpe/freight-market/internal/model"
)

type BoardExporter interface {
	Generate(board model.WeeklyBoard) ([]byte, error)
}

type OfferRenderer interface {
	Generate(doc model.OfferDocument) ([]byte, error)
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// ExportService renders the current week's board and single contract offers.
type ExportService struct {
	contracts *ContractService
	board     BoardExporter
	offer     OfferRenderer
}

func NewExportService(contracts *ContractService, board BoardExporter, offer OfferRenderer) *ExportService {
	return &ExportService{contracts: contracts, board: board, offer: offer}
}

func (s *ExportService) ExportBoard(ctx context.Context, region string) (*ExportResult, error) {
	batch, weekStart, err := s.contracts.currentBatch(ctx, region)
	if err != nil {
		return nil, err
	}
	region = strings.TrimSpace(region)

	content, err := s.board.Generate(model.WeeklyBoard{
		Region:    region,
		WeekStart: weekStart,
		Batch:     *batch,
	})
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("contracts-%s-%s.xlsx", fileSafe(region, "region"), weekStart.Format("20060102")),
		Content:  content,
	}, nil
}

func (s *ExportService) ExportOffer(ctx context.Context, region, contractID string) (*ExportResult, error) {
	contract, weekStart, err := s.contracts.currentContract(ctx, region, contractID)
	if err != nil {
		return nil, err
	}
	region = strings.TrimSpace(region)

	content, err := s.offer.Generate(model.OfferDocument{
		Region:    region,
		WeekStart: weekStart,
		Contract:  *contract,
	})
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("offer-%s-%s.pdf", fileSafe(contract.Title, "contract"), contract.ID[:min(8, len(contract.ID))]),
		Content:  content,
	}, nil
}

func fileSafe(input, fallback string) string {
	out := sanitizeFileName(strings.ToLower(input))
	if out == "" {
		return fallback
	}
	return out
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
