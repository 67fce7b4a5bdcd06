package tests

import (
    "bufio"
    "fmt"
    "os"
    "path/filepath"

    "github.com/testcontainers/testcontainers-go"
)

// ContainerLogConsumer copies the output of a container to
// containerlogs/<name>.log.
type ContainerLogConsumer struct {
    file *os.File
}

func NewContainerLogConsumer(containerName string) *ContainerLogConsumer {
    wd, err := os.Getwd()
    if err != nil {
        panic(err)
    }
    dir := filepath.Join(wd, "containerlogs")
    err = os.MkdirAll(dir, 0o755)
    if err != nil {
        panic(err)
    }
    file, err := os.Create(filepath.Join(dir, fmt.Sprintf("%s.log", containerName)))
    if err != nil {
        panic(err)
    }
    return &ContainerLogConsumer{
        file: file,
    }
}

func (c *ContainerLogConsumer) Accept(log testcontainers.Log) {
    w := bufio.NewWriter(c.file)
    _, err := w.Write(log.Content)
    if err != nil {
        panic(err)
    }
    err = w.Flush()
    if err != nil {
        panic(err)
    }
}
