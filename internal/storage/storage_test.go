package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"KiteBacktest/internal/config"
	"KiteBacktest/internal/errors"
	"KiteBacktest/internal/model"
)

type StorageTestSuite struct {
	suite.Suite
	cfg *config.Config
	mgr *Manager
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageTestSuite))
}

func (suite *StorageTestSuite) SetupTest() {
	suite.cfg = &config.Config{}
	suite.cfg.Storage.DataDir = filepath.Join(suite.T().TempDir(), "historical_data")
	suite.cfg.Market.Symbols = []string{"A", "B", "C"}
	suite.mgr = NewManager(suite.cfg, zap.NewNop())
}

func sampleCandles() []model.Candle {
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }
	return []model.Candle{
		{Date: day(2), Open: 2501.1, High: 2530.45, Low: 2490, Close: 2525.35, Volume: 4_512_300},
		{Date: day(3), Open: 2525.35, High: 2540.9999, Low: 2511.05, Close: 2512.1, Volume: 3_001_000},
		{Date: day(4), Open: 0.1 + 0.2, High: 1e6, Low: 0, Close: 123456.789012345, Volume: 0},
	}
}

func (suite *StorageTestSuite) writeFile(name, body string) {
	suite.Require().NoError(os.MkdirAll(suite.cfg.Storage.DataDir, 0755))
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.cfg.Storage.DataDir, name), []byte(body), 0644))
}

func (suite *StorageTestSuite) TestWriteCandlesFormat() {
	var buf bytes.Buffer
	suite.Require().NoError(WriteCandles(&buf, sampleCandles()[:2]))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	suite.Require().Len(lines, 3)
	suite.Equal("date,open,high,low,close,volume", lines[0])
	suite.Equal("2024-01-02,2501.1,2530.45,2490,2525.35,4512300", lines[1])
	suite.Equal("2024-01-03,2525.35,2540.9999,2511.05,2512.1,3001000", lines[2])
}

func (suite *StorageTestSuite) TestRoundTrip() {
	in := sampleCandles()
	var buf bytes.Buffer
	suite.Require().NoError(WriteCandles(&buf, in))

	out, err := ReadCandles(&buf)
	suite.Require().NoError(err)
	suite.Require().Len(out, len(in))

	for i := range in {
		suite.True(in[i].Date.Equal(out[i].Date))
		suite.InDelta(in[i].Open, out[i].Open, 1e-9)
		suite.InDelta(in[i].High, out[i].High, 1e-9)
		suite.InDelta(in[i].Low, out[i].Low, 1e-9)
		suite.InDelta(in[i].Close, out[i].Close, 1e-9)
		suite.Equal(in[i].Volume, out[i].Volume)
	}
}

func (suite *StorageTestSuite) TestReadCandlesErrors() {
	testCases := []struct {
		name string
		body string
	}{
		{name: "empty file", body: ""},
		{name: "missing column", body: "date,open,high,low,close\n2024-01-02,1,2,0.5,1.5\n"},
		{name: "malformed price", body: "date,open,high,low,close,volume\n2024-01-02,1,2,0.5,1.5,10\n2024-01-03,abc,2,0.5,1.5,10\n"},
		{name: "fractional volume", body: "date,open,high,low,close,volume\n2024-01-02,1,2,0.5,1.5,10.5\n"},
		{name: "bad date", body: "date,open,high,low,close,volume\n02/01/2024,1,2,0.5,1.5,10\n"},
		{name: "short row", body: "date,open,high,low,close,volume\n2024-01-02,1,2\n"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			out, err := ReadCandles(strings.NewReader(tc.body))
			suite.Error(err)
			suite.Nil(out)
		})
	}
}

func (suite *StorageTestSuite) TestFormatPriceIsCanonical() {
	suite.Equal("2490", formatPrice(2490))
	suite.Equal("0.3", formatPrice(0.3))
	suite.Equal("1234.5", formatPrice(1234.50))
}

func (suite *StorageTestSuite) TestSetupDirectoriesIsIdempotent() {
	suite.Require().NoError(suite.mgr.SetupDirectories())
	suite.Require().NoError(suite.mgr.SetupDirectories())

	info, err := os.Stat(suite.cfg.Storage.DataDir)
	suite.Require().NoError(err)
	suite.True(info.IsDir())
}

func (suite *StorageTestSuite) TestSetupDirectoriesFailure() {
	blocker := filepath.Join(suite.T().TempDir(), "file")
	suite.Require().NoError(os.WriteFile(blocker, []byte("x"), 0644))
	suite.cfg.Storage.DataDir = filepath.Join(blocker, "data")
	mgr := NewManager(suite.cfg, zap.NewNop())

	err := mgr.SetupDirectories()
	suite.True(errors.HasCode(err, errors.ErrCodeDirectoryCreate))
}

func (suite *StorageTestSuite) TestLoadCSVNotFound() {
	out, err := suite.mgr.LoadCSV("A")
	suite.Nil(out)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *StorageTestSuite) TestLoadCSVMalformedReturnsNoPartialData() {
	suite.writeFile("A.csv", "date,open,high,low,close,volume\n2024-01-02,1,2,0.5,1.5,10\n2024-01-03,1,2,0.5,oops,10\n")

	out, err := suite.mgr.LoadCSV("A")
	suite.Nil(out)
	suite.True(errors.HasCode(err, errors.ErrCodeCSVParse))
}

func (suite *StorageTestSuite) TestLoadCSV() {
	var buf bytes.Buffer
	suite.Require().NoError(WriteCandles(&buf, sampleCandles()))
	suite.writeFile("B.csv", buf.String())

	out, err := suite.mgr.LoadCSV("B")
	suite.Require().NoError(err)
	suite.Len(out, 3)
	suite.Equal(filepath.Join(suite.cfg.Storage.DataDir, "B.csv"), suite.mgr.Path("B"))
}

func (suite *StorageTestSuite) TestStatusReportMissingSet() {
	suite.writeFile("A.csv", "date,open,high,low,close,volume\n2024-01-02,1,2,0.5,1.5,10\n2024-01-03,1,2,0.5,1.5,10\n")
	suite.writeFile("notes.txt", "ignored")

	report, err := suite.mgr.StatusReport()
	suite.Require().NoError(err)

	suite.True(report.DirExists)
	suite.Equal(3, report.Configured)
	suite.Require().Len(report.Files, 1)
	suite.Equal("A.csv", report.Files[0].Name)
	suite.Equal("A", report.Files[0].Symbol)
	suite.Equal(2, report.Files[0].Rows)
	suite.Positive(report.Files[0].SizeBytes)
	suite.Equal([]string{"B", "C"}, report.Missing)
	suite.False(report.Complete())
}

func (suite *StorageTestSuite) TestStatusReportExtraFilesAndComplete() {
	for _, name := range []string{"C.csv", "A.csv", "B.csv", "EXTRA.csv"} {
		suite.writeFile(name, "date,open,high,low,close,volume\n")
	}

	report, err := suite.mgr.StatusReport()
	suite.Require().NoError(err)

	suite.Len(report.Files, 4)
	suite.Equal("A.csv", report.Files[0].Name)
	suite.Equal(0, report.Files[0].Rows)
	suite.Empty(report.Missing)
	suite.True(report.Complete())
}

func (suite *StorageTestSuite) TestStatusReportMissingDirectory() {
	report, err := suite.mgr.StatusReport()
	suite.Require().NoError(err)

	suite.False(report.DirExists)
	suite.Empty(report.Files)
	suite.Equal([]string{"A", "B", "C"}, report.Missing)

	_, statErr := os.Stat(suite.cfg.Storage.DataDir)
	suite.True(os.IsNotExist(statErr))
}
