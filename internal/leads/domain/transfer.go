package domain

import (
	"strings"
	"time"
)

// DetectTransfer decides whether a lead update constitutes a category
// transfer and, if so, builds the log entry. All three conditions must hold:
//
//  1. the lead had a non-empty primary category before the update;
//  2. the actor's role matches the prior primary category (case-insensitive),
//     since only the owning department can hand a lead over;
//  3. the update carries a primary category different from the prior one.
//
// When the actor is outside the owning department the category change is
// still applied and audited through the normal diff path, just not logged as
// a transfer.
func DetectTransfer(prior *Lead, actor Actor, newPrimary, newSecondary *string, remark string, now time.Time) (TransferLogEntry, bool) {
	if prior.PrimaryCategory == "" {
		return TransferLogEntry{}, false
	}
	if !strings.EqualFold(actor.Role, prior.PrimaryCategory) {
		return TransferLogEntry{}, false
	}
	if newPrimary == nil || *newPrimary == prior.PrimaryCategory {
		return TransferLogEntry{}, false
	}

	to := TransferParty{
		Author:          *newPrimary,
		PrimaryCategory: *newPrimary,
	}
	if newSecondary != nil {
		to.SecondaryCategory = *newSecondary
	}

	return TransferLogEntry{
		TransferredFrom: TransferParty{
			Author:            actor.Name,
			PrimaryCategory:   prior.PrimaryCategory,
			SecondaryCategory: prior.SecondaryCategory,
		},
		TransferredTo: to,
		Remark:        remark,
		LogTime:       now,
	}, true
}
