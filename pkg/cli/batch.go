package cli

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/anthrogo/growthz/pkg/zscore"
)

var (
	fileFlag = &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Path to the input CSV file",
		Required: true,
	}

	outFlag = &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Path to the output CSV file (default: <input>_scored.csv)",
	}

	bmiColFlag = &cli.StringFlag{
		Name:  "bmi-col",
		Usage: "Name of the BMI column (empty skips the zbmi output)",
	}

	heightColFlag = &cli.StringFlag{
		Name:  "height-col",
		Usage: "Name of the height column (empty skips the zhfa output)",
	}

	ageColFlag = &cli.StringFlag{
		Name:  "age-col",
		Usage: "Name of the age-in-months column",
	}

	sexColFlag = &cli.StringFlag{
		Name:  "sex-col",
		Usage: "Name of the sex column (1=male, 2=female)",
	}

	batchCmd = &cli.Command{
		Name:    "batch",
		Aliases: []string{"b"},
		Usage:   "Score every row of a CSV file, appending zbmi/zhfa columns",
		UsageText: `growthz batch --file cohort.csv
   growthz batch -f cohort.csv -o scored.csv --bmi-col bmi_kgm2 --age-col age_mo`,
		Action: cmdBatch,
		Flags: []cli.Flag{
			fileFlag,
			outFlag,
			bmiColFlag,
			heightColFlag,
			ageColFlag,
			sexColFlag,
		},
	}
)

// BatchResult is the batch summary rendered after the output file is
// written. Failed rows are reported here, never fatal.
type BatchResult struct {
	Input               string `json:"input" yaml:"input"`
	Output              string `json:"output" yaml:"output"`
	zscore.SeriesResult `yaml:",inline"`
}

func cmdBatch(c *cli.Context) error {
	cfg := getConfig(c)

	in := c.String(fileFlag.Name)
	out := c.String(outFlag.Name)
	if out == "" {
		ext := filepath.Ext(in)
		out = strings.TrimSuffix(in, ext) + "_scored" + ext
	}

	cols := zscore.Columns{
		BMI:    cfg.Conf.Columns.BMI,
		Height: cfg.Conf.Columns.Height,
		Age:    cfg.Conf.Columns.Age,
		Sex:    cfg.Conf.Columns.Sex,
	}
	if v := c.String(bmiColFlag.Name); v != "" {
		cols.BMI = v
	}
	if v := c.String(heightColFlag.Name); v != "" {
		cols.Height = v
	}
	if v := c.String(ageColFlag.Name); v != "" {
		cols.Age = v
	}
	if v := c.String(sexColFlag.Name); v != "" {
		cols.Sex = v
	}

	frame, err := readFrame(in)
	if err != nil {
		return err
	}

	// A mapped measurement column that the file simply does not have is
	// not an error when it came from config defaults: score what exists.
	if cols.BMI != "" && !frameHas(frame, cols.BMI) && !c.IsSet(bmiColFlag.Name) {
		cols.BMI = ""
	}
	if cols.Height != "" && !frameHas(frame, cols.Height) && !c.IsSet(heightColFlag.Name) {
		cols.Height = ""
	}

	res, err := zscore.ComputeSeries(cfg.Table, frame, cols)
	if err != nil {
		return err
	}

	if err := writeFrame(out, res.Frame); err != nil {
		return err
	}
	slog.Debug("batch scored", "rows", res.Rows, "failed", res.Failed, "output", out)

	return encode(&BatchResult{Input: in, Output: out, SeriesResult: *res})
}

func frameHas(f *zscore.Frame, col string) bool {
	for _, c := range f.Columns {
		if c == col {
			return true
		}
	}
	return false
}

func readFrame(path string) (*zscore.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("empty file: %s", path)
	}
	return &zscore.Frame{Columns: records[0], Rows: records[1:]}, nil
}

func writeFrame(path string, f *zscore.Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(f.Columns); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if err := w.WriteAll(f.Rows); err != nil {
		return errors.Wrap(err, "writing rows")
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flushing %s", path)
}
