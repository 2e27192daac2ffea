package handlers

import (
	"strings"

	"github.com/saeid-a/SocialGoBack/internal/models"
)

const maxPostContentLength = 2000

func validateStatusUpdateRequest(req statusUpdateRequest) string {
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return "latitude and longitude must be provided together"
	}
	if req.Latitude != nil {
		if msg := validateCoordinates(*req.Latitude, *req.Longitude); msg != "" {
			return msg
		}
	}
	if req.Latitude == nil && req.GoMode == nil &&
		req.Instagram == nil && req.Snapchat == nil && req.Twitter == nil {
		return "at least one field is required"
	}
	return ""
}

func validateCreatePostRequest(req createPostRequest) string {
	if strings.TrimSpace(req.Content) == "" {
		return "content is required"
	}
	if len(req.Content) > maxPostContentLength {
		return "content must be at most 2000 characters"
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return "latitude and longitude must be provided together"
	}
	if req.Latitude != nil {
		if msg := validateCoordinates(*req.Latitude, *req.Longitude); msg != "" {
			return msg
		}
	}
	return ""
}

func validateBlockRequest(req blockRequest) string {
	if strings.TrimSpace(req.UserID) == "" {
		return "user_id is required"
	}
	return ""
}

func validateReportRequest(req reportRequest) string {
	if strings.TrimSpace(req.UserID) == "" {
		return "user_id is required"
	}
	if _, ok := models.ReportReasons[req.Reason]; !ok {
		return "reason must be one of: harassment, spam, inappropriate_content, impersonation, underage, other"
	}
	return ""
}

func validateCheckoutRequest(req checkoutRequest) string {
	if strings.TrimSpace(req.PriceID) == "" {
		return "price_id is required"
	}
	if strings.TrimSpace(req.SuccessURL) == "" {
		return "success_url is required"
	}
	if strings.TrimSpace(req.CancelURL) == "" {
		return "cancel_url is required"
	}
	return ""
}

func validateCoordinates(lat, lng float64) string {
	if lat < -90 || lat > 90 {
		return "latitude must be between -90 and 90"
	}
	if lng < -180 || lng > 180 {
		return "longitude must be between -180 and 180"
	}
	return ""
}
