package models

import "time"

type YieldRollup struct {
	Families  int     `json:"families"`
	InputKgs  float64 `json:"inputKgs"`
	OutputKgs float64 `json:"outputKgs"`
	Outturn   float64 `json:"outturn"`
}

// YieldFamily is one cherry lot across all of its processing variants.
type YieldFamily struct {
	BatchFamily    string             `json:"batchFamily"`
	StationID      int                `json:"cwsId"`
	StationName    string             `json:"cwsName"`
	IsNatural      bool               `json:"isNatural"`
	BatchNos       []string           `json:"batchNos"`
	InputKgs       float64            `json:"inputKgs"`
	OutputKgs      float64            `json:"outputKgs"`
	Outturn        float64            `json:"outturn"`
	GradeBreakdown map[string]float64 `json:"gradeBreakdown"`
}

type StationYield struct {
	StationID   int    `json:"cwsId"`
	StationName string `json:"cwsName"`
	YieldRollup
}

type YieldReport struct {
	Overall        YieldRollup        `json:"overall"`
	Natural        YieldRollup        `json:"natural"`
	NonNatural     YieldRollup        `json:"nonNatural"`
	OutputByType   map[string]float64 `json:"outputByType"`
	GradeBreakdown map[string]float64 `json:"gradeBreakdown"`
	Stations       []StationYield     `json:"stations"`
	Families       []YieldFamily      `json:"families"`
}

type StationStock struct {
	StationID        int     `json:"cwsId"`
	StationName      string  `json:"cwsName"`
	CherryPurchase   float64 `json:"cherryPurchase"`
	ParchmentOutput  float64 `json:"parchmentOutput"`
	TransportedKgs   float64 `json:"transportedKgs"`
	ParchmentInstore float64 `json:"parchmentInstore"`
}

type StockReport struct {
	Stations []StationStock `json:"stations"`
	Totals   StationStock   `json:"totals"`
}

// ScreenAggregate holds the screen-derived figures of one side of a test.
type ScreenAggregate struct {
	AVG15Plus float64 `json:"AVG15+"`
	AVG1314   float64 `json:"AVG13/14"`
	AVGLG     float64 `json:"AVGLG"`
	OT        float64 `json:"OT"`
}

type QualitySide struct {
	CwsMoisture float64 `json:"cwsMoisture"`
	LabMoisture float64 `json:"labMoisture"`
	Defect      float64 `json:"defect"`
	PPScore     float64 `json:"ppScore"`
	Category    string  `json:"category"`
	Screen      Screen  `json:"screen"`
	ScreenAggregate
}

type QualityVariation struct {
	VMC      float64 `json:"vmc"`
	V15Plus  float64 `json:"v15plus"`
	V1314    float64 `json:"v1314"`
	VLG      float64 `json:"vlg"`
	VOT      float64 `json:"vot"`
	VPPScore float64 `json:"vppscore"`
}

type DeliveryReportLine struct {
	DeliveryID  int              `json:"id"`
	TransferID  int              `json:"transferId"`
	GradeKey    string           `json:"gradeKey"`
	TruckNumber string           `json:"truckNumber"`
	NewCategory string           `json:"newCategory"`
	Sample      QualitySide      `json:"sample"`
	Delivery    QualitySide      `json:"delivery"`
	Variation   QualityVariation `json:"totals"`
}

type DeliveryReportBatch struct {
	BatchNo        string               `json:"batchNo"`
	ProcessingID   int                  `json:"processingId"`
	BaggingOffID   int                  `json:"baggingOffId"`
	TransportedKgs map[string]float64   `json:"transportedKgs"`
	DeliveredKgs   map[string]float64   `json:"deliveryKgs"`
	TotalTransport float64              `json:"totalTransported"`
	TotalDelivery  float64              `json:"totalDelivery"`
	VariationKgs   float64              `json:"variationKgs"`
	Lines          []DeliveryReportLine `json:"batches"`
}

type DeliveryStationTotals struct {
	TransportedKgs     float64 `json:"totalTransportedKgs"`
	DeliveredKgs       float64 `json:"totalDeliveredKgs"`
	VariationKgs       float64 `json:"totalVariationKgs"`
	Avg15PlusDelivery  float64 `json:"totAvg15PlusDelivery"`
	Avg15PlusSample    float64 `json:"totAvg15PlusSample"`
	Avg1314Delivery    float64 `json:"totAvg1314Delivery"`
	Avg1314Sample      float64 `json:"totAvg1314Sample"`
	AVLGDelivery       float64 `json:"totAVLGDelivery"`
	AVLGSample         float64 `json:"totAVLGSample"`
	OTDelivery         float64 `json:"totOTDelivery"`
	OTSample           float64 `json:"totOTSample"`
	AvgPPScoreDelivery float64 `json:"avgPPScoreDelivery"`
	AvgPPScoreSample   float64 `json:"avgPPScoreSample"`
	QualityVariation
}

type DeliveryStationReport struct {
	StationID   int                   `json:"cwsId"`
	StationName string                `json:"cwsName"`
	Totals      DeliveryStationTotals `json:"totals"`
	Batches     []DeliveryReportBatch `json:"batches"`
}

type DeliveryGrandTotals struct {
	TransportedKgs    float64 `json:"grandTotalTransportedKgs"`
	DeliveredKgs      float64 `json:"grandTotalDeliveredKgs"`
	VariationKgs      float64 `json:"grandTotalVariationKgs"`
	Avg15PlusDelivery float64 `json:"grandTotAvg15PlusDelivery"`
	Avg1314Delivery   float64 `json:"grandTotAvg1314Delivery"`
	AVLGDelivery      float64 `json:"grandTotAVLGDelivery"`
	OTDelivery        float64 `json:"grandTotOTDelivery"`
}

type DeliveryReport struct {
	Total       int                     `json:"total"`
	GrandTotals DeliveryGrandTotals     `json:"grandTotals"`
	Stations    []DeliveryStationReport `json:"report"`
}

// DeliveryReportRow is one delivery record joined with its sample, transfer
// and bagging-off, as loaded for the delivery report.
type DeliveryReportRow struct {
	Delivery    *QualityDelivery
	Sample      *Quality // nil when the sample was never recorded
	Transfer    *Transfer
	BaggingOff  *BaggingOff
	StationName string
}

// ArchiveReceipt describes a stored report snapshot.
type ArchiveReceipt struct {
	Report    string    `json:"report"`
	Key       string    `json:"key"`
	Bucket    string    `json:"bucket"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"createdAt"`
}
