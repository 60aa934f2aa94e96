package pipeline

import (
	"github.com/glizzus/pkinput/internal/merge"
	"github.com/glizzus/pkinput/internal/schedule"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type scheduleParquetRow struct {
	Subject     string  `parquet:"name=subject, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Sequence    string  `parquet:"name=sequence, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Formulation string  `parquet:"name=formulation, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Time        float64 `parquet:"name=time, type=DOUBLE"`
	Period      int32   `parquet:"name=period, type=INT32"`
	TimeNumber  int32   `parquet:"name=time_number, type=INT32"`
}

type actualParquetRow struct {
	Subject       string  `parquet:"name=subject, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Sequence      string  `parquet:"name=sequence, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Formulation   string  `parquet:"name=formulation, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Time          float64 `parquet:"name=time, type=DOUBLE"`
	Concentration string  `parquet:"name=concentration, type=BYTE_ARRAY, convertedtype=UTF8"`
	Period        int32   `parquet:"name=period, type=INT32"`
}

func marshalScheduleParquet(rows []schedule.Row) ([]byte, error) {
	out := make([]scheduleParquetRow, len(rows))
	for i, r := range rows {
		out[i] = scheduleParquetRow{
			Subject:     r.Subject,
			Sequence:    r.Sequence,
			Formulation: r.Formulation,
			Time:        r.Time,
			Period:      int32(r.Period),
			TimeNumber:  int32(r.TimeNumber),
		}
	}
	return marshalParquet(out)
}

func marshalActualParquet(rows []merge.Row) ([]byte, error) {
	out := make([]actualParquetRow, len(rows))
	for i, r := range rows {
		out[i] = actualParquetRow{
			Subject:       r.Subject,
			Sequence:      r.Sequence,
			Formulation:   r.Formulation,
			Time:          r.Time,
			Concentration: r.Concentration,
			Period:        int32(r.Period),
		}
	}
	return marshalParquet(out)
}

func marshalParquet[T any](rows []T) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(T), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
