package maintenance

import "log/slog"

// SecurityManager gates the boot sequence: the server only leaves the
// configuration states once the Vault tokens have been applied and the chat
// gateway bridge has been bound.
type SecurityManager struct {
	apiTokenApplication     bool
	ChanApiTokenApplication chan bool

	servicesTokenApplication     bool
	ChanServicesTokenApplication chan bool

	gatewayBridgeBinding     bool
	ChanGatewayBridgeBinding chan bool
}

func NewSecurityManager() (SecurityManager, error) {
	manager := SecurityManager{
		apiTokenApplication:     false,
		ChanApiTokenApplication: make(chan bool),

		servicesTokenApplication:     false,
		ChanServicesTokenApplication: make(chan bool),

		gatewayBridgeBinding:     false,
		ChanGatewayBridgeBinding: make(chan bool),
	}

	return manager, nil
}

func (manager *SecurityManager) Start(state_machine *StateMachine) {
	go func() {
		for {
			select {
			case is_applied := <-manager.ChanServicesTokenApplication:
				if is_applied {
					manager.servicesTokenApplication = true
				}
			case is_applied := <-manager.ChanApiTokenApplication:
				if is_applied {
					manager.apiTokenApplication = true
				}
			}

			if manager.servicesTokenApplication && manager.apiTokenApplication {
				if err := state_machine.To(MODE_INIT, STATE_CONFIGURING, SUBSTATE_CONFIGURING_SERVICES); err != nil {
					slog.Error("MSS : failed to enter service configuration", "error", err)
					break
				}
			}
		}
	}()

	go func() {
		for is_bound := range manager.ChanGatewayBridgeBinding {
			if !is_bound {
				continue
			}
			manager.gatewayBridgeBinding = true

			if err := state_machine.To(MODE_OPERATIONAL, STATE_RUNNING, SUBSTATE_SAFE); err != nil {
				slog.Error("MSS : failed to enter running state", "error", err)
				break
			}
		}
	}()
}
