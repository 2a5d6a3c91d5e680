package dnn

import "gocv.io/x/gocv"

func BestYOLO(output gocv.Mat, threshold float64) (int, float32) {
	c := bestYOLO(output, threshold)
	return c.classID, c.confidence
}

func BestSSD(output gocv.Mat, threshold float64) (int, float32) {
	c := bestSSD(output, threshold)
	return c.classID, c.confidence
}
