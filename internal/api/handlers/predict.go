package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/aimguide/internal/bounce"
)

// MaxPredictBounces bounds the work a single predict request can ask for.
const MaxPredictBounces = 64

// Predict runs the bounce predictor on an explicit input record.
// POST /api/v1/predict
func Predict(c *gin.Context) {
	var in bounce.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prediction input"})
		return
	}
	if in.MaxBounces > MaxPredictBounces {
		c.JSON(http.StatusBadRequest, gin.H{"error": "maxBounces too large"})
		return
	}

	path := bounce.Predict(in)
	c.JSON(http.StatusOK, gin.H{
		"segments": path,
		"bounces":  path.BouncePoints(),
		"boundary": bounce.DeriveBoundary(in.TableRect, in.BallRadius),
	})
}
