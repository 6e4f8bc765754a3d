package airquality

import (
	"strings"
	"testing"
	"time"
)

const sampleCSV = `No,PM2.5,PM10,SO2,NO2,CO,O3,TEMP,PRES,DEWP,RAIN,wd,WSPM,station,datetime,Category
1,10,20,3,15,300,70,1.5,1020,-10,0,N,3.1,Aotizhongxin,2013-03-01 00:00:00,Good
2,,30,4,18,400,60,1.2,1021,-11,0,NNE,2.0,Aotizhongxin,2013-03-01 01:00:00,Good
3,80,120,10,50,1200,20,0.5,1022,-9,0,N,1.0,Changping,2013-03-01 00:00:00,Moderate
4,160,200,20,70,2000,10,2.0,1019,-8,0,E,0.5,Changping,2013-03-02 05:00:00,Unhealthy
5,NA,NA,,,,,3.0,1018,-7,0.2,E,0.8,Dingling,2013-03-02 10:00:00,Smoky
6,40,60,5,30,600,40,4.0,1017,-6,0,N,2.2,Aotizhongxin,2013-03-03 23:00:00,Good
`

func sampleTable(t *testing.T) *Table {
	t.Helper()
	table, err := ParseTable(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return table
}

func ts(s string) time.Time {
	v, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return v
}

func reading(at, station, category string, pm25 float64) *Reading {
	return NewReading(ts(at), station, category, "N", map[Parameter]float64{ParamPM25: pm25})
}
