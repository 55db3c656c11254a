// Package file loads and saves compositions on disk. Files ending in .json
// hold a codec.Document, anything else is the text record format.
package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/model"
	"github.com/jsphweid/noted/util"
	"github.com/pkg/errors"
)

const (
	TextSuffix = ".noted"
	JSONSuffix = ".json"
)

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), JSONSuffix)
}

func Load(path string) (model.Composition, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Composition{}, err
	}
	defer f.Close()

	var c model.Composition
	if isJSON(path) {
		var doc codec.Document
		if err := json.NewDecoder(f).Decode(&doc); err != nil {
			return model.Composition{}, errors.Wrapf(err, "decode %s", path)
		}
		c, err = doc.Composition()
	} else {
		c, err = codec.ParseComposition(f)
	}
	return c, errors.Wrap(err, path)
}

func Save(path string, c model.Composition) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if isJSON(path) {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(codec.NewDocument(c))
	} else {
		err = codec.FormatComposition(f, c)
	}
	if err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

// Gather expands args into composition files. Directories are walked for
// .noted and .json files, up to maxNum of them when maxNum is not zero.
func Gather(args []string, maxNum int) ([]string, error) {
	var res []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			res = append(res, arg)
			continue
		}
		paths, err := util.GatherPaths(arg, maxNum, TextSuffix, JSONSuffix)
		if err != nil {
			return nil, err
		}
		res = append(res, paths...)
	}
	return util.Unique(res), nil
}
