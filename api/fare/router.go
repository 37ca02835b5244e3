package fare

import (
	"github.com/gin-gonic/gin"

	"github.com/kilianp07/taxifare/api/middleware"
)

var availableEndpoints = []string{
	"GET /",
	"POST /predict",
	"POST /predict/batch",
	"GET /features",
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter wires the prediction endpoints and middleware on a gin engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.RequestID(),
		middleware.Logging(h.log),
		middleware.Recovery(h.log, h.monitor),
		middleware.CORS(origins),
	)
	r.GET("/", h.Health)
	r.POST("/predict", h.Predict)
	r.POST("/predict/batch", h.PredictBatch)
	r.GET("/features", h.Features)
	r.NoRoute(h.NotFound)
	r.NoMethod(h.MethodNotAllowed)
	return r
}
