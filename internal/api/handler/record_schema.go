package handler

import "github.com/playground/userstats/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

// Name length is enforced by the record itself so oversize names surface as
// the domain's name-too-long error rather than a generic 400.
type createRecordRequest struct {
	Owner string `json:"owner" validate:"omitempty,maxbytes=44"`
	Name  string `json:"name"`
}

type renameRecordRequest struct {
	Owner string `param:"owner" json:"-" validate:"required,maxbytes=44"`
	Name  string `json:"name"`
}

type recordLinks struct {
	Self    string `json:"self"`
	Address string `json:"address"`
}

type recordResponse struct {
	InstructionID string      `json:"instruction_id,omitempty"`
	Address       string      `json:"address"`
	Owner         string      `json:"owner"`
	Level         uint16      `json:"level"`
	Name          string      `json:"name"`
	Bump          uint8       `json:"bump"`
	Space         int         `json:"space"`
	Links         recordLinks `json:"_links"`
}

type addressResponse struct {
	Owner   string `json:"owner"`
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
	Program string `json:"program_id,omitempty"`
}

type initializeResponse struct {
	InstructionID string `json:"instruction_id"`
}

func toRecordResponse(rec *domain.UserRecord, instructionID string) recordResponse {
	return recordResponse{
		InstructionID: instructionID,
		Address:       rec.Address.String(),
		Owner:         rec.Owner,
		Level:         rec.Level,
		Name:          rec.Name,
		Bump:          rec.Bump,
		Space:         domain.RecordSpace,
		Links: recordLinks{
			Self:    "/v1/records/" + rec.Owner,
			Address: "/v1/addresses/" + rec.Owner,
		},
	}
}
