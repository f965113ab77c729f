package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/playground/userstats/internal/core/ports"
)

// RecordHandler handles HTTP requests for user record operations. Writes go
// through the instruction executor; reads hit the record service directly.
type RecordHandler struct {
	exec    ports.InstructionExecutor
	records ports.RecordService
	program string
}

func NewRecordHandler(exec ports.InstructionExecutor, records ports.RecordService, programID string) *RecordHandler {
	return &RecordHandler{exec: exec, records: records, program: programID}
}

// Initialize handles POST /v1/initialize.
//
// @Summary      Run the program's initialize instruction
// @Tags         program
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string  false  "Idempotency key to prevent duplicate submissions"
// @Success      200              {object}  initializeResponse
// @Failure      401              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /v1/initialize [post]
func (h *RecordHandler) Initialize(c echo.Context) error {
	signer, err := ctxSigner(c)
	if err != nil {
		return err
	}

	receipt, err := h.exec.Execute(c.Request().Context(), ports.Instruction{
		Kind:           ports.InstructionInitialize,
		Signer:         signer,
		Owner:          signer.Identity,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, initializeResponse{InstructionID: receipt.ID})
}

// Create handles POST /v1/records.
//
// @Summary      Create the caller's user record
// @Description  Allocates the record at the address derived from the owner identity. Owner defaults to the token subject.
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createRecordRequest  true   "Record details"
// @Success      201              {object}  recordResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/records [post]
func (h *RecordHandler) Create(c echo.Context) error {
	signer, err := ctxSigner(c)
	if err != nil {
		return err
	}

	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Owner == "" {
		req.Owner = signer.Identity
	}

	receipt, err := h.exec.Execute(c.Request().Context(), ports.Instruction{
		Kind:           ports.InstructionCreateRecord,
		Signer:         signer,
		Owner:          req.Owner,
		Name:           req.Name,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toRecordResponse(receipt.Record, receipt.ID))
}

// Rename handles PATCH /v1/records/:owner.
//
// @Summary      Rename a user record
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        owner            path      string               true   "Owner identity"
// @Param        Idempotency-Key  header    string               false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      renameRecordRequest  true   "New name"
// @Success      200              {object}  recordResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/records/{owner} [patch]
func (h *RecordHandler) Rename(c echo.Context) error {
	signer, err := ctxSigner(c)
	if err != nil {
		return err
	}

	var req renameRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	receipt, err := h.exec.Execute(c.Request().Context(), ports.Instruction{
		Kind:           ports.InstructionRenameRecord,
		Signer:         signer,
		Owner:          req.Owner,
		Name:           req.Name,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toRecordResponse(receipt.Record, receipt.ID))
}

// Get handles GET /v1/records/:owner.
//
// @Summary      Get a user record by owner
// @Tags         records
// @Produce      json
// @Param        owner  path      string  true  "Owner identity"
// @Success      200    {object}  recordResponse
// @Failure      400    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /v1/records/{owner} [get]
func (h *RecordHandler) Get(c echo.Context) error {
	rec, err := h.records.GetRecord(c.Request().Context(), c.Param("owner"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordResponse(rec, ""))
}

// Address handles GET /v1/addresses/:owner.
//
// @Summary      Derive the record address for an owner
// @Tags         records
// @Produce      json
// @Param        owner  path      string  true  "Owner identity"
// @Success      200    {object}  addressResponse
// @Failure      400    {object}  errorResponse
// @Router       /v1/addresses/{owner} [get]
func (h *RecordHandler) Address(c echo.Context) error {
	view, err := h.records.DeriveAddress(c.Param("owner"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, addressResponse{
		Owner:   view.Owner,
		Address: view.Address.String(),
		Bump:    view.Bump,
		Program: h.program,
	})
}
