package Kernel

import "fmt"

// ValidationError 输入校验失败：在下发任何内核命令之前抛出，不产生部分输出
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf 构造校验错误
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// KernelError 内核命令执行失败，携带失败的操作名，便于调用方定位失败阶段
type KernelError struct {
	Op  string
	Err error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("kernel operation %s failed: %v", e.Op, e.Err)
}

func (e *KernelError) Unwrap() error {
	return e.Err
}

func kernelErrf(op, format string, args ...interface{}) error {
	return &KernelError{Op: op, Err: fmt.Errorf(format, args...)}
}

// ResourceError 临时文件/输出文件读写失败
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}
