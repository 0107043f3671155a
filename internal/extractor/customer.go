package extractor

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"meeting-insights-go/internal/dates"
	"meeting-insights-go/internal/llm"
	"meeting-insights-go/internal/parser"
)

// CustomerInfo is the metadata pulled from a document. Empty strings mean "not found".
type CustomerInfo struct {
	CustomerName string
	MeetingDate  string
}

// CustomerExtractor asks for customer name and meeting date in one prompt.
type CustomerExtractor struct {
	gw       llm.Gateway
	fallback bool
	log      logrus.FieldLogger
}

// NewCustomerExtractor builds the extractor. With fallback set, a gateway that is
// unavailable hands the text to HeuristicCustomerInfo instead of returning nothing.
func NewCustomerExtractor(gw llm.Gateway, fallback bool, log logrus.FieldLogger) *CustomerExtractor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CustomerExtractor{gw: gw, fallback: fallback, log: log.WithField("component", "customer-extractor")}
}

func (e *CustomerExtractor) Extract(ctx context.Context, text string) CustomerInfo {
	comp, err := e.gw.Query(ctx, CustomerPrompt(text), CustomerMaxTokens)
	if err != nil {
		if e.fallback && errors.Is(err, llm.ErrUnavailable) {
			info := HeuristicCustomerInfo(text)
			e.log.WithFields(logrus.Fields{"customer": info.CustomerName, "date": info.MeetingDate}).Info("heuristic customer fallback")
			return info
		}
		e.log.WithError(err).Warn("no model response for customer info")
		return CustomerInfo{}
	}

	var name, date string
	if obj, perr := parser.ExtractJSON(comp.Text); perr == nil {
		name = parser.String(obj, "customer_name")
		date = parser.String(obj, "meeting_date")
	} else {
		e.log.WithError(perr).Debug("customer json unreadable, trying field patterns")
		name, _ = parser.Field(comp.Text, "customer_name")
		date, _ = parser.Field(comp.Text, "meeting_date")
	}
	if date != "" {
		date = dates.Display(date)
	}
	e.log.WithFields(logrus.Fields{"customer": name, "date": date, "endpoint": comp.Endpoint}).Debug("customer info extracted")
	return CustomerInfo{CustomerName: name, MeetingDate: date}
}
