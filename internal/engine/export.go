package engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/smarteats/orderflow/internal/cloudwriter"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// OrderArchiveRow is one delivered order flattened for the analytics
// archive. Timestamps are unix seconds, amounts whole rupees.
type OrderArchiveRow struct {
	OrderID        string `parquet:"name=orderId,type=BYTE_ARRAY,convertedtype=UTF8"`
	OrderNumber    string `parquet:"name=orderNumber,type=BYTE_ARRAY,convertedtype=UTF8"`
	CustomerEmail  string `parquet:"name=customerEmail,type=BYTE_ARRAY,convertedtype=UTF8"`
	RestaurantID   string `parquet:"name=restaurantId,type=BYTE_ARRAY,convertedtype=UTF8"`
	DriverID       string `parquet:"name=driverId,type=BYTE_ARRAY,convertedtype=UTF8"`
	PaymentMethod  string `parquet:"name=paymentMethod,type=BYTE_ARRAY,convertedtype=UTF8"`
	Subtotal       int64  `parquet:"name=subtotal,type=INT64"`
	DeliveryFee    int64  `parquet:"name=deliveryFee,type=INT64"`
	Taxes          int64  `parquet:"name=taxes,type=INT64"`
	Discount       int64  `parquet:"name=discount,type=INT64"`
	PointsEarned   int64  `parquet:"name=pointsEarned,type=INT64"`
	PointsRedeemed int64  `parquet:"name=pointsRedeemed,type=INT64"`
	TotalAmount    int64  `parquet:"name=totalAmount,type=INT64"`
	PlacedAt       int64  `parquet:"name=placedAt,type=INT64"`
	DeliveredAt    int64  `parquet:"name=deliveredAt,type=INT64"`
}

// ArchiveExporter writes delivered orders into date-partitioned parquet
// files, locally or to cloud storage.
type ArchiveExporter struct {
	orders             repositories.OrderRepository
	cfg                models.ExportConfig
	cloudWriterFactory cloudwriter.CloudWriterFactory
}

func NewArchiveExporter(orders repositories.OrderRepository, cfg models.ExportConfig) (*ArchiveExporter, error) {
	e := &ArchiveExporter{orders: orders, cfg: cfg}

	if cfg.Destination != "local" {
		switch cfg.CloudStorage.Provider {
		case "s3":
			factory, err := cloudwriter.NewS3WriterFactory(cfg.CloudStorage.Region)
			if err != nil {
				return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			e.cloudWriterFactory = factory
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.CloudStorage.Provider)
		}
	}

	return e, nil
}

// Export writes every delivered order, one parquet file per delivery date.
// Returns the number of rows written.
func (e *ArchiveExporter) Export(ctx context.Context) (int, error) {
	orders, err := e.orders.ListByStatus(ctx, models.OrderStatusDelivered)
	if err != nil {
		return 0, fmt.Errorf("listing delivered orders: %w", err)
	}

	partitions := make(map[string][]*models.Order)
	for _, o := range orders {
		year, month, day := o.DeliveredAt.Date()
		key := fmt.Sprintf("year=%d/month=%02d/day=%02d", year, month, day)
		partitions[key] = append(partitions[key], o)
	}

	written := 0
	for partition, batch := range partitions {
		if err := e.writePartition(partition, batch); err != nil {
			return written, err
		}
		written += len(batch)
	}
	return written, nil
}

func (e *ArchiveExporter) writePartition(partition string, orders []*models.Order) error {
	fw, err := e.newParquetFile(partition)
	if err != nil {
		return err
	}

	pw, err := writer.NewParquetWriter(fw, new(OrderArchiveRow), 4)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	for _, o := range orders {
		row := OrderArchiveRow{
			OrderID:        o.ID,
			OrderNumber:    o.OrderNumber,
			CustomerEmail:  o.CustomerEmail,
			RestaurantID:   o.RestaurantID,
			DriverID:       o.DriverID,
			PaymentMethod:  o.PaymentMethod,
			Subtotal:       o.Subtotal,
			DeliveryFee:    o.DeliveryFee,
			Taxes:          o.Taxes,
			Discount:       o.Discount,
			PointsEarned:   o.PointsEarned,
			PointsRedeemed: o.PointsRedeemed,
			TotalAmount:    o.TotalAmount,
			PlacedAt:       o.PlacedAt.Unix(),
			DeliveredAt:    o.DeliveredAt.Unix(),
		}
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("failed to write archive row for %s: %w", o.OrderNumber, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finish parquet file for %s: %w", partition, err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file for %s: %w", partition, err)
	}

	log.Printf("Wrote %d archived orders to partition %s", len(orders), partition)
	return nil
}

func (e *ArchiveExporter) newParquetFile(partition string) (source.ParquetFile, error) {
	if e.cloudWriterFactory != nil {
		objectPath := filepath.Join(e.cfg.OutputFolder, partition, "orders.parquet")
		cw, err := e.cloudWriterFactory.NewWriter(e.cfg.CloudStorage.BucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return NewCloudParquetFile(cw), nil
	}

	fullPath := filepath.Join(e.cfg.OutputPath, e.cfg.OutputFolder, partition)
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return nil, err
	}
	fw, err := local.NewLocalFileWriter(filepath.Join(fullPath, "orders.parquet"))
	if err != nil {
		return nil, fmt.Errorf("failed to create local file writer: %w", err)
	}
	return fw, nil
}

// CloudParquetFile adapts a CloudWriter to the parquet source interface.
// Cloud objects are write-only: reads and seek-from-end are not supported.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cw cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cw}
}

func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (n int, err error) {
	return c.cloudWriter.Write(p)
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
