package extraction_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jhoicas/conciliador-ubl/internal/application/attachments"
	"github.com/jhoicas/conciliador-ubl/internal/application/extraction"
	"github.com/jhoicas/conciliador-ubl/internal/application/ports/mocks"
	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/filesystem"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/metrics"
)

func fixtureInput(t *testing.T, name string) extraction.Input {
	t.Helper()
	return extraction.Input{Name: name, Data: readFixture(t, name)}
}

func fsAttachments(t *testing.T) (*attachments.Service, string) {
	t.Helper()
	root := t.TempDir()
	return attachments.NewService(
		filesystem.NewDedupIndexFactory(root, zerolog.Nop()),
		filesystem.NewBlobStore(root),
		zerolog.Nop(),
	), root
}

func TestBatch_KeepsInputOrder(t *testing.T) {
	inputs := []extraction.Input{
		fixtureInput(t, "invoice_net.xml"),
		fixtureInput(t, "invoice_incoherent.xml"),
		fixtureInput(t, "truncated.xml"),
		fixtureInput(t, "invoice_gross.xml"),
		fixtureInput(t, "invoice_missing_total.xml"),
		fixtureInput(t, "invoice_zero_custom.xml"),
	}
	b := extraction.NewBatch(newEngine(nil), extraction.BatchConfig{Workers: 3}, zerolog.Nop())

	res := b.Run(context.Background(), inputs)

	require.Len(t, res.Outcomes, len(inputs))
	want := []extraction.Status{
		extraction.StatusAccepted,
		extraction.StatusIncoherent,
		extraction.StatusMalformed,
		extraction.StatusAccepted,
		extraction.StatusMissingTotal,
		extraction.StatusAccepted,
	}
	for i, o := range res.Outcomes {
		assert.Equal(t, inputs[i].Name, o.Source)
		assert.Equal(t, want[i], o.Status, o.Source)
	}
	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Consolidated.Records, 3)
	assert.Equal(t, 3, res.Counts()[extraction.StatusAccepted])
}

func TestBatch_DuplicateInvoiceConsolidated(t *testing.T) {
	net := fixtureInput(t, "invoice_net.xml")
	copia := extraction.Input{Name: "reenvio.xml", Data: net.Data}
	b := extraction.NewBatch(newEngine(nil), extraction.BatchConfig{Workers: 2}, zerolog.Nop())

	res := b.Run(context.Background(), []extraction.Input{net, copia})

	assert.Equal(t, 2, res.Counts()[extraction.StatusAccepted])
	require.Len(t, res.Consolidated.Records, 1)
	assert.Equal(t, 1, res.Consolidated.DuplicateRecords)
}

func TestBatch_ZipBundleStoresAttachmentsOnce(t *testing.T) {
	svc, root := fsAttachments(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	b := extraction.NewBatch(newEngine(nil), extraction.BatchConfig{Workers: 2, Attachments: svc, Metrics: m}, zerolog.Nop())

	pdf := []byte("%PDF-1.4 representación gráfica FE3003")
	bundle := buildZip(t,
		extraction.Input{Name: "FE3003/invoice_zero_custom.xml", Data: readFixture(t, "invoice_zero_custom.xml")},
		extraction.Input{Name: "FE3003/representacion.pdf", Data: pdf},
	)

	first := b.Run(context.Background(), []extraction.Input{{Name: "correo.zip", Data: bundle}})
	require.Len(t, first.Outcomes, 1)
	o := first.Outcomes[0]
	require.Equal(t, extraction.StatusAccepted, o.Status, o.Error)
	assert.Equal(t, "correo.zip!invoice_zero_custom.xml", o.Source)
	require.Len(t, o.Attachments, 1)
	assert.False(t, o.Attachments[0].Duplicate)
	assert.Equal(t, "890900608", o.Attachments[0].Partition)
	assert.Empty(t, o.Pending)

	stored, err := os.ReadFile(filepath.Join(root, "890900608", "representacion.pdf"))
	require.NoError(t, err)
	assert.Equal(t, pdf, stored)

	second := b.Run(context.Background(), []extraction.Input{{Name: "correo-reenviado.zip", Data: bundle}})
	require.Len(t, second.Outcomes[0].Attachments, 1)
	assert.True(t, second.Outcomes[0].Attachments[0].Duplicate)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Attachments.WithLabelValues("stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Attachments.WithLabelValues("duplicate")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Documents.WithLabelValues("accepted")))
}

func TestBatch_EmbeddedAttachmentOfAcceptedInvoice(t *testing.T) {
	svc, root := fsAttachments(t)
	b := extraction.NewBatch(newEngine(nil), extraction.BatchConfig{Workers: 1, Attachments: svc}, zerolog.Nop())

	res := b.Run(context.Background(), []extraction.Input{fixtureInput(t, "invoice_net.xml")})

	require.Len(t, res.Outcomes[0].Attachments, 1)
	assert.FileExists(t, filepath.Join(root, "900123456", "orden_compra.pdf"))
}

func TestBatch_BrokenZip(t *testing.T) {
	b := extraction.NewBatch(newEngine(nil), extraction.BatchConfig{}, zerolog.Nop())

	res := b.Run(context.Background(), []extraction.Input{
		{Name: "roto.zip", Data: []byte("PK\x03\x04 esto no es un zip")},
		{Name: "vacio.zip", Data: buildZip(t, extraction.Input{Name: "leeme.txt", Data: []byte("hola")})},
	})

	require.Len(t, res.Outcomes, 2)
	for _, o := range res.Outcomes {
		assert.Equal(t, extraction.StatusMalformed, o.Status, o.Source)
		assert.NotEmpty(t, o.Error)
	}
}

func TestBatch_CanceledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockRecordPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := extraction.NewBatch(newEngine(nil), extraction.BatchConfig{Workers: 2, Publisher: pub}, zerolog.Nop())
	res := b.Run(ctx, []extraction.Input{fixtureInput(t, "invoice_net.xml"), fixtureInput(t, "invoice_gross.xml")})

	for _, o := range res.Outcomes {
		assert.Equal(t, extraction.StatusCanceled, o.Status)
		assert.True(t, errors.Is(o.Err, context.Canceled))
	}
	assert.Empty(t, res.Consolidated.Records)
}

func TestBatch_PublishesConsolidatedRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockRecordPublisher(ctrl)

	var gotRunID string
	var got []*entity.InvoiceRecord
	pub.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, runID string, records []*entity.InvoiceRecord) error {
			gotRunID, got = runID, records
			return nil
		})

	b := extraction.NewBatch(newEngine(nil), extraction.BatchConfig{Workers: 2, Publisher: pub}, zerolog.Nop())
	res := b.Run(context.Background(), []extraction.Input{
		fixtureInput(t, "invoice_net.xml"),
		fixtureInput(t, "invoice_incoherent.xml"),
		fixtureInput(t, "invoice_gross.xml"),
	})

	assert.Equal(t, res.RunID, gotRunID)
	require.Len(t, got, 2)
	assert.Equal(t, "FE1001", got[0].InvoiceNumber)
	assert.Equal(t, "SETP990000042", got[1].InvoiceNumber)
	assert.Empty(t, res.PublishError)
}

func TestBatch_PublishErrorIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockRecordPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker caído"))

	b := extraction.NewBatch(newEngine(nil), extraction.BatchConfig{Publisher: pub}, zerolog.Nop())
	res := b.Run(context.Background(), []extraction.Input{fixtureInput(t, "invoice_net.xml")})

	assert.Equal(t, "broker caído", res.PublishError)
	assert.Equal(t, extraction.StatusAccepted, res.Outcomes[0].Status)
}

func TestBatch_NoAcceptedRecordsNoPublish(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockRecordPublisher(ctrl)

	b := extraction.NewBatch(newEngine(nil), extraction.BatchConfig{Publisher: pub}, zerolog.Nop())
	res := b.Run(context.Background(), []extraction.Input{fixtureInput(t, "truncated.xml")})

	assert.Equal(t, extraction.StatusMalformed, res.Outcomes[0].Status)
}
