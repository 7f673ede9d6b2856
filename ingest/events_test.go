package ingest_test

import (
	"encoding/json"

	"github.com/TwiN/deepmerge"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/medisys-health/diagnostics/ingest"
	"github.com/medisys-health/diagnostics/test"
)

func eventBridgeEvent(overrides map[string]interface{}) []byte {
	body, err := test.LoadFixture("./test/fixtures/eventbridge_event.json")
	Expect(err).ToNot(HaveOccurred())
	if overrides == nil {
		return body
	}

	patch, err := json.Marshal(overrides)
	Expect(err).ToNot(HaveOccurred())
	body, err = deepmerge.JSON(body, patch, deepmerge.Config{
		PreventMultipleDefinitionsOfKeysWithPrimitiveValue: false},
	)
	Expect(err).ToNot(HaveOccurred())
	return body
}

var _ = Describe("ParseEvent", func() {
	It("extracts the objects of s3 records", func() {
		body, err := test.LoadFixture("./test/fixtures/s3_event.json")
		Expect(err).ToNot(HaveOccurred())

		refs, err := ingest.ParseEvent(body)
		Expect(err).ToNot(HaveOccurred())
		Expect(refs).To(Equal([]ingest.ObjectRef{
			{Bucket: "medisys-landing", Key: "public/uploads/clinic-a/June results(2).csv"},
			{Bucket: "medisys-landing", Key: "uploads/clinic-b/export.xlsx"},
		}))
	})

	It("extracts the object of an eventbridge event", func() {
		refs, err := ingest.ParseEvent(eventBridgeEvent(nil))
		Expect(err).ToNot(HaveOccurred())
		Expect(refs).To(Equal([]ingest.ObjectRef{
			{Bucket: "medisys-landing", Key: "uploads/clinic-a/export.csv"},
		}))
	})

	It("rejects eventbridge events for other detail types", func() {
		_, err := ingest.ParseEvent(eventBridgeEvent(map[string]interface{}{
			"detail-type": "Object Deleted",
		}))
		Expect(err).To(MatchError(ingest.ErrInvalidEvent))
	})

	It("rejects eventbridge events without an object key", func() {
		_, err := ingest.ParseEvent(eventBridgeEvent(map[string]interface{}{
			"detail": map[string]interface{}{
				"object": map[string]interface{}{
					"key": "",
				},
			},
		}))
		Expect(err).To(MatchError(ingest.ErrInvalidEvent))
	})

	It("rejects unknown events", func() {
		_, err := ingest.ParseEvent([]byte(`{"source": "aws.ec2"}`))
		Expect(err).To(MatchError(ingest.ErrInvalidEvent))
	})

	It("rejects invalid json", func() {
		_, err := ingest.ParseEvent([]byte(`{`))
		Expect(err).To(MatchError(ingest.ErrInvalidEvent))
	})
})
