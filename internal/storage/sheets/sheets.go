package sheets

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"orcamentos/internal/config"
	"orcamentos/internal/domain"
	"orcamentos/internal/schema"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Backend stores the tables in one Google spreadsheet and the uploads in one
// Drive folder, both opened (or created) by name at construction. Any error
// out of New is the caller's cue to fall back to the local store.
type Backend struct {
	logger *zap.Logger

	srv   *sheetsapi.Service
	drive *driveapi.Service

	spreadsheetID string
	folderID      string

	// minimum pause between API calls, Google throttles free-tier projects
	pauseMs   int
	limiterMu sync.Mutex
	lastCall  time.Time

	// worksheets already confirmed to exist this session
	knownMu     sync.Mutex
	knownSheets map[string]bool
}

func New(cfg config.GoogleConfig, logger *zap.Logger) (*Backend, error) {
	ctx := context.Background()

	credBytes, err := loadCredentials(cfg.CredentialsFile, cfg.CredentialsJSON)
	if err != nil {
		return nil, err
	}
	creds, err := google.CredentialsFromJSON(ctx, credBytes,
		sheetsapi.SpreadsheetsScope, driveapi.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}
	srv, err := sheetsapi.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("initializing sheets service: %w", err)
	}
	drv, err := driveapi.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("initializing drive service: %w", err)
	}

	b := &Backend{
		logger:      logger,
		srv:         srv,
		drive:       drv,
		pauseMs:     cfg.PauseMs,
		lastCall:    time.Now(),
		knownSheets: make(map[string]bool),
	}

	if err := b.openSpreadsheet(cfg.SheetName); err != nil {
		return nil, err
	}
	if err := b.setupFolder(cfg.DriveFolderName); err != nil {
		return nil, err
	}
	return b, nil
}

// wait enforces the pause between consecutive API calls.
func (b *Backend) wait() {
	b.limiterMu.Lock()
	defer b.limiterMu.Unlock()
	elapsed := time.Since(b.lastCall)
	pause := time.Duration(b.pauseMs) * time.Millisecond
	if elapsed < pause {
		time.Sleep(pause - elapsed)
	}
	b.lastCall = time.Now()
}

// openSpreadsheet finds the spreadsheet by name in Drive, creating it when the
// account has none.
func (b *Backend) openSpreadsheet(name string) error {
	b.wait()

	query := fmt.Sprintf(
		"mimeType='application/vnd.google-apps.spreadsheet' and name='%s' and trashed=false", name)
	list, err := b.drive.Files.List().Q(query).Fields("files(id, name)").Do()
	if err != nil {
		return fmt.Errorf("looking up spreadsheet %q: %w", name, err)
	}
	if len(list.Files) > 0 {
		b.spreadsheetID = list.Files[0].Id
		return nil
	}

	b.wait()
	created, err := b.srv.Spreadsheets.Create(&sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{Title: name},
	}).Do()
	if err != nil {
		return fmt.Errorf("creating spreadsheet %q: %w", name, err)
	}
	b.spreadsheetID = created.SpreadsheetId
	b.logger.Info("spreadsheet created", zap.String("name", name), zap.String("id", b.spreadsheetID))
	return nil
}

// setupFolder finds or creates the Drive folder the uploads go into.
func (b *Backend) setupFolder(name string) error {
	b.wait()

	query := fmt.Sprintf(
		"mimeType='application/vnd.google-apps.folder' and name='%s' and trashed=false", name)
	list, err := b.drive.Files.List().Q(query).Fields("files(id, name)").Do()
	if err != nil {
		return fmt.Errorf("looking up drive folder %q: %w", name, err)
	}
	if len(list.Files) > 0 {
		b.folderID = list.Files[0].Id
		return nil
	}

	b.wait()
	folder, err := b.drive.Files.Create(&driveapi.File{
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
	}).Fields("id").Do()
	if err != nil {
		return fmt.Errorf("creating drive folder %q: %w", name, err)
	}
	b.folderID = folder.Id
	b.logger.Info("drive folder created", zap.String("name", name), zap.String("id", b.folderID))
	return nil
}

// ensureWorksheet guarantees the worksheet exists with its header row. Checked
// once per table per session; worksheets are never deleted out from under a
// running process in this deployment.
func (b *Backend) ensureWorksheet(t schema.Table) error {
	b.knownMu.Lock()
	defer b.knownMu.Unlock()
	if b.knownSheets[t.Name] {
		return nil
	}

	b.wait()
	meta, err := b.srv.Spreadsheets.Get(b.spreadsheetID).Do()
	if err != nil {
		return fmt.Errorf("reading spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties.Title == t.Name {
			b.knownSheets[t.Name] = true
			return nil
		}
	}

	b.wait()
	_, err = b.srv.Spreadsheets.BatchUpdate(b.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: t.Name},
			},
		}},
	}).Do()
	if err != nil {
		return fmt.Errorf("creating worksheet %s: %w", t.Name, err)
	}

	b.wait()
	header := &sheetsapi.ValueRange{Values: [][]interface{}{t.HeaderRow()}}
	_, err = b.srv.Spreadsheets.Values.Update(
		b.spreadsheetID, fmt.Sprintf("%s!A1", t.Name), header,
	).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("writing header of %s: %w", t.Name, err)
	}

	b.logger.Info("worksheet created", zap.String("table", t.Name))
	b.knownSheets[t.Name] = true
	return nil
}

func (b *Backend) ListTable(t schema.Table) ([]schema.Record, error) {
	if err := b.ensureWorksheet(t); err != nil {
		return nil, err
	}

	b.wait()
	resp, err := b.srv.Spreadsheets.Values.Get(
		b.spreadsheetID, fmt.Sprintf("%s!A:Z", t.Name),
	).Do()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.Name, err)
	}
	if len(resp.Values) < 2 {
		return nil, nil
	}

	header := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		header = append(header, fmt.Sprint(cell))
	}

	recs := make([]schema.Record, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		recs = append(recs, t.Record(header, row))
	}
	return recs, nil
}

func (b *Backend) AppendRow(t schema.Table, rec schema.Record) error {
	if err := b.ensureWorksheet(t); err != nil {
		return err
	}

	b.wait()
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{t.Row(rec)}}
	_, err := b.srv.Spreadsheets.Values.Append(
		b.spreadsheetID, fmt.Sprintf("%s!A1", t.Name), vr,
	).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Do()
	if err != nil {
		return fmt.Errorf("appending to %s: %w", t.Name, err)
	}
	return nil
}

func (b *Backend) UpdateFields(t schema.Table, id string, updates schema.Record) error {
	idCol := t.Col("id")
	if idCol < 0 {
		return fmt.Errorf("table %s has no id column", t.Name)
	}
	if err := b.ensureWorksheet(t); err != nil {
		return err
	}

	b.wait()
	idRange := fmt.Sprintf("%s!%s2:%s", t.Name, colLetter(idCol), colLetter(idCol))
	resp, err := b.srv.Spreadsheets.Values.Get(b.spreadsheetID, idRange).Do()
	if err != nil {
		return fmt.Errorf("reading ids of %s: %w", t.Name, err)
	}

	rowNum := 0 // 1-based sheet row
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == id {
			rowNum = i + 2 // data starts on row 2, row 1 is the header
			break
		}
	}
	if rowNum == 0 {
		return fmt.Errorf("%s id %q: %w", t.Name, id, domain.ErrNotFound)
	}

	data := make([]*sheetsapi.ValueRange, 0, len(updates))
	for field, value := range updates {
		col := t.Col(field)
		if col < 0 {
			continue
		}
		data = append(data, &sheetsapi.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", t.Name, colLetter(col), rowNum),
			Values: [][]interface{}{{value}},
		})
	}
	if len(data) == 0 {
		return nil
	}

	b.wait()
	_, err = b.srv.Spreadsheets.Values.BatchUpdate(b.spreadsheetID, &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Do()
	if err != nil {
		return fmt.Errorf("updating %s row %d: %w", t.Name, rowNum, err)
	}
	return nil
}

// UploadBlob sends the attachment to the uploads folder, makes it readable by
// anyone and returns the stable uc?id= link the client apps embed.
func (b *Backend) UploadBlob(owner, filename string, data []byte, mimeType string) (string, error) {
	b.wait()
	file, err := b.drive.Files.Create(&driveapi.File{
		Name:    fmt.Sprintf("%s_%s", owner, filename),
		Parents: []string{b.folderID},
	}).Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", filename, err)
	}

	b.wait()
	_, err = b.drive.Permissions.Create(file.Id, &driveapi.Permission{
		Type: "anyone",
		Role: "reader",
	}).Do()
	if err != nil {
		return "", fmt.Errorf("publishing %s: %w", filename, err)
	}

	return fmt.Sprintf("https://drive.google.com/uc?id=%s", file.Id), nil
}

// colLetter maps a zero-based column index to its A1 letter. Both tables fit
// well inside a single letter.
func colLetter(i int) string {
	return string(rune('A' + i))
}
