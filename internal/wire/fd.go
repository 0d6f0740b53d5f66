package wire

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrTooManyFDs is returned when a received ancillary-data buffer
// carries more than one file descriptor; the protocol never sends
// more than one.
var ErrTooManyFDs = errors.New("wire: more than one file descriptor in control message")

// RecvRecord reads up to len(buf) bytes from sockFD plus at most one
// ancillary file descriptor, in a single recvmsg call, and returns the
// number of bytes read; checking that a whole record arrived is left to
// the caller. fd is -1 when no descriptor accompanied the message.
func RecvRecord(sockFD int, buf []byte) (n int, fd int, err error) {
	fd = -1
	oob := make([]byte, unix.CmsgSpace(4))
	n, oobn, _, _, err := unix.Recvmsg(sockFD, buf, oob, 0)
	if err != nil {
		return 0, -1, fmt.Errorf("wire: recvmsg: %w", err)
	}
	if oobn == 0 {
		return n, -1, nil
	}
	cmsgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return n, -1, fmt.Errorf("wire: parse control message: %w", err)
	}
	for _, cmsg := range cmsgs {
		if cmsg.Header.Level != unix.SOL_SOCKET || cmsg.Header.Type != unix.SCM_RIGHTS {
			continue
		}
		fds, err := unix.ParseUnixRights(&cmsg)
		if err != nil {
			return n, -1, fmt.Errorf("wire: parse unix rights: %w", err)
		}
		if len(fds) > 1 {
			for _, extra := range fds {
				unix.Close(extra)
			}
			return n, -1, ErrTooManyFDs
		}
		if len(fds) == 1 {
			fd = fds[0]
		}
	}
	return n, fd, nil
}

// SendRecord writes buf to fd in a single sendmsg call, attaching
// attachFD as ancillary data when it is non-negative.
func SendRecord(sockFD int, buf []byte, attachFD int) error {
	var oob []byte
	if attachFD >= 0 {
		oob = unix.UnixRights(attachFD)
	}
	return unix.Sendmsg(sockFD, buf, oob, nil, 0)
}
