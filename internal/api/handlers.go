package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	customerrors "qrlink/internal/errors"
	"qrlink/internal/services"
)

// callerHeader carries the opaque caller identity. Authentication happens in
// front of this service; handlers only require the header to be present.
const callerHeader = "X-Caller-ID"

// SetupRoutes configures all Gin routes and injects the services.
func SetupRoutes(router *gin.Engine, codeService *services.CodeService, resolver *services.Resolver, analytics *services.AnalyticsService) {
	router.GET("/health", HealthCheckHandler)

	// Public redirect path. Static codes have no token and are never
	// reachable here.
	router.GET("/qr/:token", RedirectHandler(resolver))

	api := router.Group("/api/v1", RequireCaller())
	{
		api.POST("/codes", CreateCodeHandler(codeService))
		api.GET("/codes", ListCodesHandler(codeService))
		api.PUT("/codes/:id/target", UpdateTargetHandler(codeService))
		api.GET("/codes/:id/qr", QRImageHandler(codeService))
		api.GET("/codes/:id/analytics", AnalyticsHandler(analytics))
	}
}

// HealthCheckHandler handles the /health route to verify service status.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequireCaller rejects requests without a caller identity.
func RequireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(callerHeader) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + callerHeader + " header"})
			return
		}
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	return c.GetHeader(callerHeader)
}

// CreateCodeRequest is the JSON body for creating a code.
type CreateCodeRequest struct {
	Kind      string `json:"kind" binding:"required"`
	TargetURL string `json:"target_url" binding:"required"`
}

// UpdateTargetRequest is the JSON body for rewriting a dynamic code's target.
type UpdateTargetRequest struct {
	NewURL string `json:"new_url" binding:"required"`
}

// CreateCodeHandler creates a code record for the caller. For dynamic codes
// the response carries the QR image as base64 PNG; if only the image
// encoding failed, the created record is returned with qr_error set so the
// caller can retry via the /qr endpoint without recreating the code.
func CreateCodeHandler(codeService *services.CodeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		code, png, err := codeService.CreateCode(callerID(c), req.Kind, req.TargetURL)
		if err != nil {
			// Encoding failure after a durable create is partial
			// success, not failure.
			if code != nil && customerrors.IsExternal(err) {
				c.JSON(http.StatusCreated, gin.H{
					"code":     code,
					"qr_error": "QR image generation failed, retry via GET /api/v1/codes/:id/qr",
				})
				return
			}
			respondError(c, err)
			return
		}

		resp := gin.H{"code": code}
		if png != nil {
			resp["qr_image"] = base64.StdEncoding.EncodeToString(png)
			resp["redirect_url"] = codeService.RedirectURL(*code.Token)
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// ListCodesHandler returns every code owned by the caller.
func ListCodesHandler(codeService *services.CodeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		codes, err := codeService.ListByOwner(callerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"codes": codes})
	}
}

// UpdateTargetHandler rewrites the target of an owned dynamic code.
func UpdateTargetHandler(codeService *services.CodeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var req UpdateTargetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		code, err := codeService.UpdateTarget(callerID(c), id, req.NewURL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": code})
	}
}

// QRImageHandler regenerates and serves the QR PNG of an owned dynamic code.
func QRImageHandler(codeService *services.CodeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		png, err := codeService.QRImage(callerID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}

// AnalyticsHandler returns the aggregated report for an owned code.
func AnalyticsHandler(analytics *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		report, err := analytics.Aggregate(c.Request.Context(), id, callerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// RedirectHandler resolves a token and issues the HTTP 302 redirect. Visit
// recording happens inside the resolver and never delays the redirect.
func RedirectHandler(resolver *services.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		target, err := resolver.Resolve(c.Request.Context(), token, c.ClientIP(), c.GetHeader("User-Agent"))
		if err != nil {
			if errors.Is(err, customerrors.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
				return
			}
			logrus.Errorf("Error resolving token %q: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Redirect(http.StatusFound, target)
	}
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code id"})
		return 0, false
	}
	return uint(id), true
}

// respondError maps the error taxonomy to HTTP status codes:
// NotFound 404, Forbidden 403, Validation 400, external collaborators 502.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, customerrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, customerrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, customerrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, customerrors.ErrTokenGenerationFailed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to generate unique token. Please try again later."})
	case customerrors.IsExternal(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logrus.Errorf("Unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
