// Package schema converts between the incident JSON wire format and the
// record model.
//
// Load validates an inbound request body and yields the three client-settable
// fields; every violated rule is reported, keyed by field name, in a
// ValidationError. Dump renders stored incidents for responses.
//
//	in, err := schema.Load(body)
//	var verr *schema.ValidationError
//	if errors.As(err, &verr) {
//	    // 400 with verr.Messages
//	}
//	rec := in.Record()
package schema
