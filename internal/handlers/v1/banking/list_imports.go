package banking

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/property-server/internal/logging"
	"github.com/carson-networks/property-server/internal/service"
)

// ListImportsInput is the Huma input for listing recent imports.
type ListImportsInput struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Number of batches to return"`
}

// ListImportsResponseBody is the response body for listing recent imports.
type ListImportsResponseBody struct {
	Imports []ImportBatch `json:"imports" doc:"Most recent import batches, newest first"`
}

// ListImportsOutput is the Huma output for listing recent imports.
type ListImportsOutput struct {
	Body ListImportsResponseBody
}

type importLister interface {
	ListImports(ctx context.Context, limit int) ([]service.ImportBatch, error)
}

// ListImportsHandler handles GET /v1/banking/imports.
type ListImportsHandler struct {
	BankingService importLister
}

// NewListImportsHandler creates a new ListImportsHandler.
func NewListImportsHandler(svc importLister) *ListImportsHandler {
	return &ListImportsHandler{BankingService: svc}
}

// Register registers the list imports endpoint with the Huma API.
func (h *ListImportsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-bank-imports",
		Method:      http.MethodGet,
		Path:        "/v1/banking/imports",
		Summary:     "List bank imports",
		Description: "Returns the most recent statement imports with their matched counts.",
		Tags:        []string{"Banking"},
	}, h.handle)
}

func (h *ListImportsHandler) handle(ctx context.Context, input *ListImportsInput) (*ListImportsOutput, error) {
	logData := logging.GetLogData(ctx)

	batches, err := h.BankingService.ListImports(ctx, input.Limit)
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to list imports", err)
	}

	if logData != nil {
		logData.AddData("importCount", len(batches))
	}

	resp := ListImportsResponseBody{
		Imports: make([]ImportBatch, len(batches)),
	}
	for i, batch := range batches {
		resp.Imports[i] = importBatchFromService(batch)
	}

	return &ListImportsOutput{Body: resp}, nil
}
