package public

import (
	"strconv"

	"github.com/louisbranch/agencysite/internal/services/site/domain/catalog"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inquiries"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/form"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

func reviewForm(loc templates.Localizer, input catalog.ReviewInput, errs form.Errors) templates.Form {
	ratings := make([]templates.Option, 0, 5)
	for rating := 5; rating >= 1; rating-- {
		ratings = append(ratings, templates.Option{Value: strconv.Itoa(rating), Label: strconv.Itoa(rating)})
	}
	return templates.Form{
		Action: routepath.Reviews,
		Submit: templates.T(loc, "reviews.submit"),
		Errors: errs,
		Fields: []templates.Field{
			{Name: "author", Label: templates.T(loc, "field.name"), Value: input.Author, Required: true},
			{Name: "company", Label: templates.T(loc, "field.company"), Value: input.Company},
			{Name: "rating", Label: templates.T(loc, "field.rating"), Kind: templates.FieldSelect, Value: strconv.Itoa(input.Rating), Options: ratings},
			{Name: "body", Label: templates.T(loc, "field.review"), Kind: templates.FieldTextarea, Value: input.Body, Required: true},
		},
	}
}

func contactFields(loc templates.Localizer, input inquiries.Input) []templates.Field {
	return []templates.Field{
		{Name: "name", Label: templates.T(loc, "field.name"), Value: input.Name, Required: true},
		{Name: "email", Label: templates.T(loc, "field.email"), Kind: templates.FieldEmail, Value: input.Email, Required: true},
		{Name: "phone", Label: templates.T(loc, "field.phone"), Value: input.Phone},
	}
}

func contactForm(loc templates.Localizer, input inquiries.Input, errs form.Errors) templates.Form {
	fields := append(contactFields(loc, input),
		templates.Field{Name: "subject", Label: templates.T(loc, "field.subject"), Value: input.Subject, Required: true},
		templates.Field{Name: "message", Label: templates.T(loc, "field.message"), Kind: templates.FieldTextarea, Value: input.Message, Required: true, Rows: 6},
	)
	return templates.Form{Action: routepath.Contact, Submit: templates.T(loc, "contact.submit"), Fields: fields, Errors: errs}
}

func applicationForm(loc templates.Localizer, positions []string, input inquiries.Input, errs form.Errors) templates.Form {
	position := templates.Field{Name: "position", Label: templates.T(loc, "field.position"), Value: input.Position, Required: true}
	if len(positions) > 0 {
		position.Kind = templates.FieldSelect
		for _, name := range positions {
			position.Options = append(position.Options, templates.Option{Value: name, Label: name})
		}
	}
	fields := append(contactFields(loc, input),
		position,
		templates.Field{Name: "message", Label: templates.T(loc, "field.cover_letter"), Kind: templates.FieldTextarea, Value: input.Message, Required: true, Rows: 8},
	)
	return templates.Form{Action: routepath.Application, Submit: templates.T(loc, "application.submit"), Fields: fields, Errors: errs}
}

func investmentForm(loc templates.Localizer, input inquiries.Input, errs form.Errors) templates.Form {
	fields := append(contactFields(loc, input),
		templates.Field{Name: "amount", Label: templates.T(loc, "field.amount"), Kind: templates.FieldNumber, Value: input.Amount, Required: true},
		templates.Field{Name: "message", Label: templates.T(loc, "field.message"), Kind: templates.FieldTextarea, Value: input.Message, Required: true},
	)
	return templates.Form{Action: routepath.Investment, Submit: templates.T(loc, "investment.submit"), Fields: fields, Errors: errs}
}
