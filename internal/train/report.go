package train

import (
	"encoding/csv"
	"io"
	"strconv"
)

var reportHeader = []string{
	"estimator", "epoch", "step", "train_loss", "validation_loss",
	"decoder_log_density", "gradient_variance", "checkpoint",
}

// WriteCSV writes reports with a header row.
func WriteCSV(w io.Writer, reports []Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', 8, 64) }
	for _, r := range reports {
		record := []string{
			r.Estimator,
			strconv.Itoa(r.Epoch),
			strconv.Itoa(r.Step),
			format(r.TrainLoss),
			format(r.ValidationLoss),
			format(r.DecoderLogDensity),
			format(r.GradientVariance),
			r.Checkpoint,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
