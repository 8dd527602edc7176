// Package report renders XLSX downloads for the passbook and audit views.
package report

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/ledger"
)

const dateFormat = "2006-01-02 15:04"

func Passbook(entries []ledger.PassbookEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"date", "description", "delta", "running_balance"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	row := 2
	for _, e := range entries {
		excelRow := []interface{}{
			e.Date.Format(dateFormat),
			e.Description,
			e.Delta,
			e.RunningBalance,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, err
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func AuditLog(entries []audit.Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"timestamp", "actor_id", "actor_name", "action", "details", "client_id"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	row := 2
	for _, e := range entries {
		var clientID interface{}
		if e.ClientID != nil {
			clientID = *e.ClientID
		}
		excelRow := []interface{}{
			e.Timestamp.Format(dateFormat),
			e.ActorID,
			e.ActorName,
			e.Action,
			e.Details,
			clientID,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, err
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
