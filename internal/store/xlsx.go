package store

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"jobsifter/internal/domain"
)

// columns is the fixed sink schema, in sheet order.
var columns = []string{"id", "title", "employer", "location", "summary", "link", "category"}

// Workbook reads and rewrites the persisted sheet wholesale. Callers bracket
// a whole read-modify-write cycle with Lock/Unlock; holding the file lock for
// the full cycle is what keeps an overlapping cron invocation from loading a
// stale sheet and overwriting the first run's additions.
type Workbook struct {
	Path  string
	Sheet string
	fl    *flock.Flock
	log   *zap.SugaredLogger
}

func NewWorkbook(path, sheet string, log *zap.SugaredLogger) *Workbook {
	return &Workbook{Path: path, Sheet: sheet, fl: flock.New(path + ".lock"), log: log}
}

// Lock takes the cross-process guard. Blocks until any other invocation
// releases it.
func (w *Workbook) Lock() error {
	return errors.Wrap(w.fl.Lock(), "lock workbook")
}

func (w *Workbook) Unlock() error {
	return w.fl.Unlock()
}

// Load reads the whole sheet into a Store. A missing file or sheet is an
// empty Store, not an error: first runs start from nothing.
func (w *Workbook) Load() (Store, error) {
	if _, err := os.Stat(w.Path); errors.Is(err, os.ErrNotExist) {
		return Store{}, nil
	}

	f, err := excelize.OpenFile(w.Path)
	if err != nil {
		return Store{}, errors.Wrapf(err, "open workbook %s", w.Path)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(w.Sheet)
	if err != nil {
		w.log.Warnw("sheet missing, starting empty", "sheet", w.Sheet, "err", err)
		return Store{}, nil
	}

	var st Store
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		id := cell(row, 0)
		if id == "" {
			continue
		}
		st.Records = append(st.Records, domain.ClassifiedRecord{
			ListingRecord: domain.ListingRecord{
				ID:         id,
				Title:      cell(row, 1),
				Employer:   cell(row, 2),
				Location:   cell(row, 3),
				Summary:    cell(row, 4),
				DetailLink: cell(row, 5),
			},
			Category: domain.ParseCategory(cell(row, 6)),
		})
	}
	return st, nil
}

// Save rewrites the workbook wholesale under the fixed sheet name.
func (w *Workbook) Save(st Store) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", w.Sheet); err != nil {
		return errors.Wrap(err, "name sheet")
	}

	for j, name := range columns {
		c, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(w.Sheet, c, name); err != nil {
			return errors.Wrap(err, "write header")
		}
	}
	for i, rec := range st.Records {
		values := []string{
			rec.ID, rec.Title, rec.Employer, rec.Location,
			rec.Summary, rec.DetailLink, string(rec.Category),
		}
		for j, v := range values {
			c, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(w.Sheet, c, v); err != nil {
				return errors.Wrapf(err, "write row %d", i+2)
			}
		}
	}

	if err := f.SaveAs(w.Path); err != nil {
		return errors.Wrapf(err, "save workbook %s", w.Path)
	}
	return nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
