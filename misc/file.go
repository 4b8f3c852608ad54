package misc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

func ReadFile(fileName string) ([]byte, error) {
	if fileName == "" {
		return nil, errors.New("no filename supplied")
	}
	contents, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s - %w", fileName, err)
	}
	return contents, nil
}

// WriteFile replaces fileName with contents. The bytes go to a temporary file in the same
// directory first, so a failed write never leaves a truncated file behind.
func WriteFile(fileName string, contents []byte) (int, error) {
	if fileName == "" {
		return 0, errors.New("no filename supplied")
	}
	file, err := os.CreateTemp(filepath.Dir(fileName), "."+filepath.Base(fileName)+".*")
	if err != nil {
		return 0, fmt.Errorf("unable to create file %s - %w", fileName, err)
	}
	tempName := file.Name()

	// CreateTemp makes the file owner-only; match what os.Create would have given
	if err = file.Chmod(0o644); err != nil {
		file.Close()
		os.Remove(tempName)
		return 0, fmt.Errorf("unable to set permissions on file %s - %w", fileName, err)
	}

	bytesWritten, err := file.Write(contents)
	if err != nil {
		file.Close()
		os.Remove(tempName)
		return bytesWritten, fmt.Errorf("unable to write file %s - %w", fileName, err)
	}
	if err = file.Close(); err != nil {
		os.Remove(tempName)
		return bytesWritten, fmt.Errorf("unable to close file %s - %w", fileName, err)
	}
	if err = os.Rename(tempName, fileName); err != nil {
		os.Remove(tempName)
		return bytesWritten, fmt.Errorf("unable to replace file %s - %w", fileName, err)
	}

	return bytesWritten, nil
}

// ReadJSON decodes fileName into v. Keys missing from the file leave v untouched.
func ReadJSON(fileName string, v interface{}) error {
	contents, err := ReadFile(fileName)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(contents, v); err != nil {
		return fmt.Errorf("unable to decode %s - %w", fileName, err)
	}
	return nil
}

func WriteJSON(fileName string, v interface{}) error {
	contents, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode %s - %w", fileName, err)
	}
	_, err = WriteFile(fileName, append(contents, '\n'))
	return err
}
