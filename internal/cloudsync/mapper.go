package cloudsync

import (
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	"github.com/ledgerly/ledgerly/internal/domain"
)

// Mapping between local entities and their remote document shape. The remote
// shape adds userId, deviceId and a lastModified timestamp, stores dates as
// timestamps, and carries tags as a list instead of the comma-joined local
// form.

// TransactionDocID is the remote document key for a transaction: its local
// row id.
func TransactionDocID(tx domain.Transaction) string {
	return strconv.FormatInt(tx.ID, 10)
}

// BudgetDocID is the remote document key for a budget. Budgets have no
// independent identifier, so the key is the composite of category and month.
func BudgetDocID(b domain.Budget) string {
	return b.Category + "_" + b.MonthYear
}

// RecurringDocID is the remote document key for a recurring definition.
func RecurringDocID(r domain.RecurringTransaction) string {
	return strconv.FormatInt(r.ID, 10)
}

func transactionToDocument(tx domain.Transaction, userID, deviceID string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"id":            TransactionDocID(tx),
		"category":      tx.Category,
		"amount":        tx.Amount,
		"date":          tx.Date.In(time.UTC),
		"type":          string(tx.Kind),
		"notes":         tx.Notes,
		"paymentMethod": tx.PaymentMethod,
		"tags":          tx.TagList(),
		"userId":        userID,
		"deviceId":      deviceID,
		"lastModified":  now,
	}
}

func documentToTransaction(data map[string]interface{}) (domain.Transaction, error) {
	id, err := docID(data)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction document: %w", err)
	}

	date, err := docTime(data, "date")
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction document: %w", err)
	}

	return domain.Transaction{
		ID:            id,
		Category:      docString(data, "category"),
		Amount:        docFloat(data, "amount"),
		Date:          civil.DateOf(date),
		Kind:          domain.TransactionKind(docString(data, "type")),
		Notes:         docString(data, "notes"),
		PaymentMethod: docString(data, "paymentMethod"),
		Tags:          domain.JoinTags(docStrings(data, "tags")),
	}, nil
}

func budgetToDocument(b domain.Budget, userID, deviceID string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"category":        b.Category,
		"monthlyBudget":   b.MonthlyBudget,
		"currentSpending": b.CurrentSpending,
		"monthYear":       b.MonthYear,
		"userId":          userID,
		"deviceId":        deviceID,
		"lastModified":    now,
	}
}

func documentToBudget(data map[string]interface{}) (domain.Budget, error) {
	category := docString(data, "category")
	if category == "" {
		return domain.Budget{}, fmt.Errorf("budget document: missing category")
	}

	return domain.Budget{
		Category:        category,
		MonthlyBudget:   docFloat(data, "monthlyBudget"),
		CurrentSpending: docFloat(data, "currentSpending"),
		MonthYear:       docString(data, "monthYear"),
	}, nil
}

func recurringToDocument(r domain.RecurringTransaction, userID, deviceID string, now time.Time) map[string]interface{} {
	data := map[string]interface{}{
		"id":            RecurringDocID(r),
		"category":      r.Category,
		"amount":        r.Amount,
		"type":          string(r.Kind),
		"notes":         r.Notes,
		"paymentMethod": r.PaymentMethod,
		"tags":          domain.SplitTags(r.Tags),
		"frequency":     string(r.Frequency),
		"startDate":     r.StartDate.In(time.UTC),
		"isActive":      r.IsActive,
		"userId":        userID,
		"deviceId":      deviceID,
		"lastModified":  now,
	}

	if r.EndDate != nil {
		data["endDate"] = r.EndDate.In(time.UTC)
	}
	if r.LastGeneratedDate != nil {
		data["lastGeneratedDate"] = r.LastGeneratedDate.In(time.UTC)
	}

	return data
}

func documentToRecurring(data map[string]interface{}) (domain.RecurringTransaction, error) {
	id, err := docID(data)
	if err != nil {
		return domain.RecurringTransaction{}, fmt.Errorf("recurring document: %w", err)
	}

	frequency, err := domain.ParseFrequency(docString(data, "frequency"))
	if err != nil {
		return domain.RecurringTransaction{}, fmt.Errorf("recurring document: %w", err)
	}

	start, err := docTime(data, "startDate")
	if err != nil {
		return domain.RecurringTransaction{}, fmt.Errorf("recurring document: %w", err)
	}

	r := domain.RecurringTransaction{
		ID:            id,
		Category:      docString(data, "category"),
		Amount:        docFloat(data, "amount"),
		Kind:          domain.TransactionKind(docString(data, "type")),
		Notes:         docString(data, "notes"),
		PaymentMethod: docString(data, "paymentMethod"),
		Tags:          domain.JoinTags(docStrings(data, "tags")),
		Frequency:     frequency,
		StartDate:     civil.DateOf(start),
		IsActive:      docBool(data, "isActive"),
	}

	if _, ok := data["endDate"]; ok {
		end, err := docTime(data, "endDate")
		if err != nil {
			return domain.RecurringTransaction{}, fmt.Errorf("recurring document: %w", err)
		}
		d := civil.DateOf(end)
		r.EndDate = &d
	}
	if _, ok := data["lastGeneratedDate"]; ok {
		last, err := docTime(data, "lastGeneratedDate")
		if err != nil {
			return domain.RecurringTransaction{}, fmt.Errorf("recurring document: %w", err)
		}
		d := civil.DateOf(last)
		r.LastGeneratedDate = &d
	}

	return r, nil
}

func preferencesToDocument(userID string, darkMode, syncEnabled bool, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"userId":      userID,
		"darkMode":    darkMode,
		"syncEnabled": syncEnabled,
		"lastUpdated": now,
	}
}

// Field readers tolerant of the loosely-typed values a document store hands
// back (arrays come as []interface{}, numbers as float64 or int64).

func docID(data map[string]interface{}) (int64, error) {
	raw := docString(data, "id")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

func docString(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func docFloat(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func docBool(data map[string]interface{}, key string) bool {
	if b, ok := data[key].(bool); ok {
		return b
	}
	return false
}

func docTime(data map[string]interface{}, key string) (time.Time, error) {
	if t, ok := data[key].(time.Time); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("field %q is not a timestamp", key)
}

func docStrings(data map[string]interface{}, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []interface{}:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
