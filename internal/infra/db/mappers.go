package db

import (
	"encoding/json"
	"log/slog"

	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/events"
)

func MapOutboxModelToSendMail(outbox Outbox) events.SendMail {
	var sendMail events.SendMail
	if err := json.Unmarshal(outbox.Payload, &sendMail); err != nil {
		slog.Error("error unmarshaling event", "err", err)
		return events.SendMail{}
	}
	return sendMail
}

func MapOutboxModelToSalesMail(outbox Outbox) events.SalesMail {
	var salesMail events.SalesMail
	if err := json.Unmarshal(outbox.Payload, &salesMail); err != nil {
		slog.Error("error unmarshaling event", "err", err)
		return events.SalesMail{}
	}
	return salesMail
}

// MapSubmissionFields decodes the sanitized intake payload stored on the
// submission row.
func MapSubmissionFields(sub Submission) dto.CreateSubmissionRequest {
	var fields dto.CreateSubmissionRequest
	if err := json.Unmarshal(sub.Fields, &fields); err != nil {
		slog.Error("error unmarshaling submission fields", "submissionID", sub.ID, "err", err)
		return dto.CreateSubmissionRequest{}
	}
	return fields
}

func MapToRawMessage(data any) json.RawMessage {
	bytes, err := json.Marshal(data)
	if err != nil {
		slog.Error("error marshaling payload", "err", err)
		return nil
	}
	return bytes
}
