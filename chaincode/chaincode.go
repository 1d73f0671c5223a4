package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

const (
	logKeyPrefix = "LOG_"
	// countKey must sort outside the logKeyPrefix range scan.
	countKey   = "SEQ_LOG"
	maxNoteLen = 50
)

// WasteLog is one committed waste report.
type WasteLog struct {
	ReporterAddress  string `json:"reporterAddress"`
	WeightGrams      uint64 `json:"weightGrams"`
	WasteType        string `json:"wasteType"`
	DisposalMethod   string `json:"disposalMethod"`
	ImageLocator     string `json:"imageLocator"`
	Note             string `json:"note"`
	Coordinates      string `json:"coordinates"`
	TimestampSeconds int64  `json:"timestampSeconds"`
}

// SmartContract records and serves waste disposal reports.
type SmartContract struct {
	contractapi.Contract
}

// SubmitWaste appends one report to the ledger. Weight is whole grams;
// the argument order mirrors the client call exactly.
func (s *SmartContract) SubmitWaste(ctx contractapi.TransactionContextInterface, weight uint64, wasteType string, disposalMethod string, imageLocator string, note string, coordinates string) error {
	if weight == 0 {
		return fmt.Errorf("weight must be a positive number of grams")
	}
	if len([]rune(note)) > maxNoteLen {
		return fmt.Errorf("note exceeds %d characters", maxNoteLen)
	}
	if imageLocator == "" {
		return fmt.Errorf("image locator is required")
	}

	reporter, err := ctx.GetClientIdentity().GetID()
	if err != nil {
		return fmt.Errorf("failed to resolve reporter identity: %v", err)
	}

	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return fmt.Errorf("failed to get transaction timestamp: %v", err)
	}

	seq, err := s.nextSequence(ctx)
	if err != nil {
		return err
	}

	log := WasteLog{
		ReporterAddress:  reporter,
		WeightGrams:      weight,
		WasteType:        wasteType,
		DisposalMethod:   disposalMethod,
		ImageLocator:     imageLocator,
		Note:             note,
		Coordinates:      coordinates,
		TimestampSeconds: ts.Seconds,
	}

	logBytes, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal waste log: %v", err)
	}

	key := fmt.Sprintf("%s%012d", logKeyPrefix, seq)
	return ctx.GetStub().PutState(key, logBytes)
}

// GetAllLogs returns every committed report in submission order.
func (s *SmartContract) GetAllLogs(ctx contractapi.TransactionContextInterface) ([]*WasteLog, error) {
	resultsIterator, err := ctx.GetStub().GetStateByRange(logKeyPrefix, logKeyPrefix+"~")
	if err != nil {
		return nil, fmt.Errorf("failed to get logs by range: %v", err)
	}
	defer resultsIterator.Close()

	logs := []*WasteLog{}
	for resultsIterator.HasNext() {
		queryResponse, err := resultsIterator.Next()
		if err != nil {
			return nil, fmt.Errorf("failed during results iteration: %v", err)
		}

		var log WasteLog
		if err := json.Unmarshal(queryResponse.Value, &log); err != nil {
			return nil, fmt.Errorf("failed to unmarshal waste log: %v", err)
		}
		logs = append(logs, &log)
	}

	return logs, nil
}

// nextSequence increments and persists the append-only log counter.
func (s *SmartContract) nextSequence(ctx contractapi.TransactionContextInterface) (uint64, error) {
	raw, err := ctx.GetStub().GetState(countKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read log counter: %v", err)
	}

	var seq uint64
	if len(raw) > 0 {
		seq, err = strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt log counter: %v", err)
		}
	}
	seq++

	if err := ctx.GetStub().PutState(countKey, []byte(strconv.FormatUint(seq, 10))); err != nil {
		return 0, fmt.Errorf("failed to update log counter: %v", err)
	}
	return seq, nil
}

func main() {
	chaincode, err := contractapi.NewChaincode(&SmartContract{})
	if err != nil {
		fmt.Printf("Error creating chaincode: %v\n", err)
		return
	}

	if err := chaincode.Start(); err != nil {
		fmt.Printf("Error starting chaincode: %v\n", err)
	}
}
