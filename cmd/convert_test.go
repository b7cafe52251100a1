package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConvertCmdAcceptsValidMDFWithNoTablesDir(t *testing.T) {
	dir := t.TempDir()
	mdfPath := filepath.Join(dir, "water.xml")
	if err := os.WriteFile(mdfPath, []byte(waterMDF()), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	convertMDFPath = mdfPath
	convertTablesDir = ""

	// A valid MDF with no --tables dir should just log and return, not call
	// logrus.Fatalf (which would terminate the test process).
	convertCmd.Run(convertCmd, nil)
}

func TestConvertCmdReportsMissingStoppingPowerFiles(t *testing.T) {
	dir := t.TempDir()
	mdfPath := filepath.Join(dir, "water.xml")
	if err := os.WriteFile(mdfPath, []byte(waterMDF()), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	convertMDFPath = mdfPath
	convertTablesDir = dir

	convertCmd.Run(convertCmd, nil)
}
