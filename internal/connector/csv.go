package connector

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"mlserved/internal/common/fsutil"
	"mlserved/internal/mllib"
	"mlserved/pkg/apidata"
)

// Dataset is the numeric view of CSV input.
type Dataset struct {
	Columns  []string
	Features [][]float64
	Labels   []float64
	IDs      []string
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Features) }

// CSVInput reads tabular data whose first row is a header. Once a backend
// commits feature columns with SetColumns (after a successful training run
// or when a trained model is loaded) later requests are aligned to them by
// column name. Transform itself never changes the committed columns.
type CSVInput struct {
	Label     string
	ID        string
	Separator rune
	Ignore    map[string]bool

	mu      sync.RWMutex
	columns []string
}

// NewCSVInput returns a connector with default settings.
func NewCSVInput() *CSVInput {
	return &CSVInput{Separator: ',', Ignore: map[string]bool{}}
}

// Init reads connector settings from the "input" object of ad.
func (c *CSVInput) Init(ad apidata.APIData) error {
	in := ad.GetData("input")
	c.Label = in.GetString("label", c.Label)
	c.ID = in.GetString("id", c.ID)
	if sep := in.GetString("separator", ""); sep != "" {
		r := []rune(sep)
		if len(r) != 1 {
			return mllib.ErrBadParam("csv separator must be a single character, got " + strconv.Quote(sep))
		}
		c.Separator = r[0]
	}
	for _, col := range in.GetStrings("ignore") {
		c.Ignore[col] = true
	}
	return nil
}

// Columns returns the feature columns in model order.
func (c *CSVInput) Columns() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.columns...)
}

// SetColumns commits the feature columns. nil releases them.
func (c *CSVInput) SetColumns(cols []string) {
	c.mu.Lock()
	c.columns = append([]string(nil), cols...)
	c.mu.Unlock()
}

// Transform parses every entry of ad["data"]. An entry naming an existing
// file is read from disk; anything else is parsed as inline CSV text. When
// train is true the label column is required; when false it is optional and
// only used for evaluation.
func (c *CSVInput) Transform(ad apidata.APIData, train bool) (Dataset, error) {
	data := ad.GetStrings("data")
	if len(data) == 0 {
		return Dataset{}, mllib.ErrBadParam("no data provided")
	}
	if train && c.Label == "" {
		return Dataset{}, mllib.ErrBadParam("csv input requires a label column for training")
	}
	// without committed columns the first entry's header decides them
	ds := Dataset{Columns: c.Columns()}
	for _, entry := range data {
		if err := c.readEntry(entry, train, &ds); err != nil {
			return Dataset{}, err
		}
	}
	if len(ds.Labels) != len(ds.Features) {
		ds.Labels = nil
	}
	return ds, nil
}

func (c *CSVInput) readEntry(entry string, train bool, ds *Dataset) error {
	var r io.Reader
	if !strings.ContainsRune(entry, '\n') && fsutil.PathExists(entry) {
		f, err := os.Open(entry)
		if err != nil {
			return mllib.ErrBadParam("cannot open data file " + entry + ": " + err.Error())
		}
		defer f.Close()
		r = f
	} else {
		r = strings.NewReader(entry)
	}
	cr := csv.NewReader(r)
	cr.Comma = c.Separator
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return mllib.ErrBadParam("cannot read csv header: " + err.Error())
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	labelIdx, hasLabel := index[c.Label]
	if train && !hasLabel {
		return mllib.ErrBadParam("label column " + strconv.Quote(c.Label) + " not found in csv header")
	}
	idIdx, hasID := -1, false
	if c.ID != "" {
		idIdx, hasID = index[c.ID]
	}

	cols, err := c.featureColumns(ds.Columns, header, index)
	if err != nil {
		return err
	}
	ds.Columns = cols

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return mllib.ErrBadParam(fmt.Sprintf("csv line %d: %v", line, err))
		}
		row := make([]float64, len(cols))
		for j, col := range cols {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[index[col]]), 64)
			if err != nil {
				return mllib.ErrBadParam(fmt.Sprintf("csv line %d column %q: not a number", line, col))
			}
			row[j] = v
		}
		ds.Features = append(ds.Features, row)
		if hasLabel {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[labelIdx]), 64)
			if err != nil {
				return mllib.ErrBadParam(fmt.Sprintf("csv line %d label: not a number", line))
			}
			ds.Labels = append(ds.Labels, v)
		}
		if hasID {
			ds.IDs = append(ds.IDs, rec[idIdx])
		} else {
			ds.IDs = append(ds.IDs, strconv.Itoa(len(ds.Features)-1))
		}
	}
	return nil
}

// featureColumns checks header against known columns, or derives the
// feature columns from header when none are known yet.
func (c *CSVInput) featureColumns(known, header []string, index map[string]int) ([]string, error) {
	if len(known) > 0 {
		for _, col := range known {
			if _, ok := index[col]; !ok {
				return nil, mllib.ErrBadParam("csv is missing feature column " + strconv.Quote(col))
			}
		}
		return known, nil
	}
	var cols []string
	for _, h := range header {
		h = strings.TrimSpace(h)
		if h == c.Label || h == c.ID || c.Ignore[h] {
			continue
		}
		cols = append(cols, h)
	}
	if len(cols) == 0 {
		return nil, mllib.ErrBadParam("csv has no feature columns")
	}
	return cols, nil
}
