package list_requests

import (
	"net/url"
	"strconv"

	"github.com/m04kA/SMC-VenueBookingService/internal/service/requests/models"
)

// ToServiceRequest собирает фильтр из query параметров
func ToServiceRequest(query url.Values) (*models.ListRequestsRequest, error) {
	req := &models.ListRequestsRequest{}

	if v := query.Get("venueId"); v != "" {
		venueID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		req.VenueID = &venueID
	}

	if v := query.Get("date"); v != "" {
		req.Date = &v
	}

	if v := query.Get("status"); v != "" {
		req.Status = &v
	}

	if v := query.Get("email"); v != "" {
		req.Email = &v
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, err
		}
		req.Limit = limit
	}

	if v := query.Get("offset"); v != "" {
		offset, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, err
		}
		req.Offset = offset
	}

	return req, nil
}
