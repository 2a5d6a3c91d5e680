package dnn

import "gocv.io/x/gocv"

type candidate struct {
	classID    int
	confidence float32
}

var none = candidate{classID: -1}

// bestYOLO scans a [1, 4+classes, anchors] output and returns the anchor
// with the highest class score above threshold.
func bestYOLO(output gocv.Mat, threshold float64) candidate {
	dims := output.Size()
	if len(dims) != 3 || dims[1] <= 4 {
		return none
	}

	rows, anchors := dims[1], dims[2]
	scores := output.Reshape(1, rows)
	defer scores.Close()

	best := none
	for a := range anchors {
		for c := 4; c < rows; c++ {
			conf := scores.GetFloatAt(c, a)
			if float64(conf) > threshold && conf > best.confidence {
				best = candidate{classID: c - 4, confidence: conf}
			}
		}
	}
	return best
}

// bestSSD scans a [1, 1, N, 7] output of (batch, class, conf, x1, y1, x2, y2)
// rows and returns the most confident row above threshold.
func bestSSD(output gocv.Mat, threshold float64) candidate {
	total := output.Total()
	if total == 0 || total%7 != 0 {
		return none
	}

	rows := output.Reshape(1, total/7)
	defer rows.Close()

	best := none
	for i := range rows.Rows() {
		conf := rows.GetFloatAt(i, 2)
		if float64(conf) > threshold && conf > best.confidence {
			best = candidate{classID: int(rows.GetFloatAt(i, 1)), confidence: conf}
		}
	}
	return best
}
