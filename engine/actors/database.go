package actors

import (
	"bytes"
	"io"
	"os"

	"nostrich/engine/library"
)

func Open(store, db string) (*os.File, bool) {
	if err := os.MkdirAll(directory(store), 0777); err != nil {
		library.LogCLI(err.Error(), 0)
	}
	_, err := os.Stat(directory(store) + db + ".dat")
	if os.IsNotExist(err) {
		return nil, false
	}
	file, err := os.Open(directory(store) + db + ".dat")
	if err != nil {
		library.LogCLI(err.Error(), 0)
		return nil, false //IDE helper
	}
	return file, true
}

func Write(store, db string, b []byte) {
	os.Remove(directory(store) + db + ".dat")
	if err := os.MkdirAll(directory(store), 0777); err != nil {
		library.LogCLI(err.Error(), 0)
	}
	f, err := os.Create(directory(store) + db + ".dat")
	if err != nil {
		library.LogCLI(err.Error(), 0)
		return //IDE helper
	}
	defer f.Close()
	_, err = io.Copy(f, bytes.NewReader(b))
	if err != nil {
		library.LogCLI(err.Error(), 0)
		return //IDE helper
	}
}

func directory(store string) string {
	dir := MakeOrGetConfig().GetString("rootDir")
	dir = dir + MakeOrGetConfig().GetString("flatFileDir")
	dir = dir + store + "/"
	return dir
}
